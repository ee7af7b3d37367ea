// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command benchmark drives a producer goroutine and a consumer goroutine
// against a single ringbuffer.RingBuffer and reports achieved throughput,
// translating original_source/main_ff_spsc.c's producer/consumer/
// batch_consumer/stream_batch_consumer driver loops into Go. flag stays on
// the standard library here: no retrieved example wires a flag-parsing
// library for a single-binary benchmark CLI, and introducing one for five
// scalar options would not exercise anything this command doesn't already
// cover by hand.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/corebuf/spscring"
	"github.com/corebuf/spscring/internal/pagebuf"
)

const maxLookaheadClaim = 4096

func main() {
	mode := flag.String("mode", "single", "consumer mode: single, batch, or stream")
	requestedCapacity := flag.Uint64("capacity", 64*1024, "requested data region size in bytes")
	payloadBytes := flag.Uint("payload", 8, "payload size in bytes the buffer is laid out for (each message carries an 8-byte id)")
	messages := flag.Uint64("messages", 1_000_000, "messages per round")
	rounds := flag.Uint64("rounds", 4, "number of rounds")
	flag.Parse()

	if err := run(*mode, *requestedCapacity, uint32(*payloadBytes), *messages, *rounds); err != nil {
		log.Fatal(err)
	}
}

func run(mode string, requestedCapacity uint64, payloadBytes uint32, messages, rounds uint64) error {
	geo, err := ringbuffer.Layout(requestedCapacity, payloadBytes)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	buf, err := pagebuf.Alloc(int(geo.TotalBytes))
	if err != nil {
		return fmt.Errorf("pagebuf alloc: %w", err)
	}
	defer pagebuf.Free(buf)

	fmt.Fprintf(os.Stderr, "allocated %d bytes page-aligned, capacity=%d payload=%d\n", len(buf), geo.Capacity, payloadBytes)

	rb, err := ringbuffer.Init(buf, requestedCapacity, payloadBytes)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	clock := timecache.NewWithResolution(time.Microsecond)
	defer clock.Stop()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		produce(rb.Producer(), clock, messages, rounds)
	}()

	go func() {
		defer wg.Done()
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		switch mode {
		case "batch":
			consumeBatch(rb.Consumer(), messages*rounds, false)
		case "stream":
			consumeBatch(rb.Consumer(), messages*rounds, true)
		default:
			consumeSingle(rb.Consumer(), messages*rounds)
		}
	}()

	wg.Wait()
	return nil
}

// spinWait escalates from a tight pause loop to runtime.Gosched after a
// short warmup, matching the __asm__("pause;") spin in
// original_source/main_ff_spsc.c while giving the Go scheduler a chance to
// run other goroutines once a wait has gone on long enough to suggest the
// other side is not about to make progress immediately.
func spinWait(attempt *uint64) {
	*attempt++
	if *attempt > 1000 {
		runtime.Gosched()
	}
}

func produce(p *ringbuffer.Producer, clock *timecache.TimeCache, messages, rounds uint64) {
	var msgID uint64
	for round := uint64(0); round < rounds; round++ {
		start := clock.CachedTime()
		var totalTries uint64
		for m := uint64(0); m < messages; m++ {
			nextMsgID := msgID + 1
			var attempt uint64
			var rec *ringbuffer.ClaimedRecord
			var ok bool
			for {
				rec, ok = p.TryLookaheadClaim(8, maxLookaheadClaim)
				if ok {
					break
				}
				spinWait(&attempt)
				totalTries++
			}
			totalTries++
			binary.LittleEndian.PutUint64(rec.Payload(), nextMsgID)
			rec.Commit(ringbuffer.TypeData)
			msgID = nextMsgID
		}
		endProduce := clock.CachedTime()
		for p.Size() != 0 {
			runtime.Gosched()
		}
		end := clock.CachedTime()
		elapsed := end.Sub(start)
		wait := end.Sub(endProduce)
		var tpt float64
		if elapsed > 0 {
			tpt = float64(messages) / elapsed.Seconds() / 1e6
		}
		fmt.Fprintf(os.Stderr, "%.2fM ops/sec %d/%d failed tries end latency:%s\n",
			tpt, totalTries-messages, messages, wait)
	}
}

func consumeSingle(c *ringbuffer.Consumer, totalMessages uint64) {
	var readMessages, failedRead uint64
	var expected uint64
	for readMessages < totalMessages {
		var attempt uint64
		var rec *ringbuffer.ReadRecord
		var ok bool
		for {
			rec, ok = c.TryRead()
			if ok {
				break
			}
			spinWait(&attempt)
			failedRead++
		}
		expected++
		content := binary.LittleEndian.Uint64(rec.Payload())
		c.CommitRead(rec)
		if content != expected {
			fmt.Fprintln(os.Stderr, "ERROR: out of order message")
			return
		}
		readMessages++
	}
	fmt.Fprintf(os.Stderr, "%d/%d failed reads\n", failedRead, totalMessages)
}

type batchState struct {
	expected uint64
	broken   bool
}

func onMessage(typeID uint32, buffer []byte, payloadOffset, payloadLen uint32, ctx any) bool {
	state := ctx.(*batchState)
	content := binary.LittleEndian.Uint64(buffer[payloadOffset : payloadOffset+payloadLen])
	if content != state.expected+1 {
		state.broken = true
		return false
	}
	state.expected++
	return true
}

func consumeBatch(c *ringbuffer.Consumer, totalMessages uint64, stream bool) {
	state := &batchState{}
	var readMessages, failedRead, successfulBatches uint64
	batchSize := uint32(64)
	for readMessages < totalMessages && !state.broken {
		var n uint32
		if stream {
			n = c.StreamBatchRead(onMessage, batchSize, state)
		} else {
			n = c.BatchRead(onMessage, batchSize, state)
		}
		if n == 0 {
			runtime.Gosched()
			failedRead++
			continue
		}
		successfulBatches++
		readMessages += uint64(n)
	}
	if state.broken {
		fmt.Fprintf(os.Stderr, "read %d messages instead of %d!\n", readMessages, totalMessages)
		return
	}
	avg := uint64(0)
	if successfulBatches > 0 {
		avg = readMessages / successfulBatches
	}
	fmt.Fprintf(os.Stderr, "avg batch reads:%d %d/%d failed reads\n", avg, failedRead, totalMessages)
}
