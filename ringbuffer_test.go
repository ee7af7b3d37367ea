// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBoundaryFillFourRecords is concrete scenario 1: four 8-byte-payload
// records exactly fill a 64-byte region, a fifth claim must fail, and
// after all four are committed and batch-read, Size returns to zero.
func TestBoundaryFillFourRecords(t *testing.T) {
	rb, err := New(64, 8)
	require.NoError(t, err)
	p := rb.Producer()
	c := rb.Consumer()

	var claims []*ClaimedRecord
	for i := 0; i < 4; i++ {
		rec, ok := p.TryClaim(8)
		require.True(t, ok)
		claims = append(claims, rec)
	}

	_, ok := p.TryClaim(8)
	require.False(t, ok, "buffer is exactly full with 4 outstanding claims")

	for _, rec := range claims {
		rec.Commit(TypeData)
	}

	delivered := uint32(0)
	cb := func(typeID uint32, buffer []byte, payloadOffset, payloadLen uint32, ctx any) bool {
		return true
	}
	for {
		n := c.BatchRead(cb, 4, nil)
		delivered += n
		if n == 0 {
			break
		}
	}
	require.Equal(t, uint32(4), delivered)
	require.Equal(t, uint64(0), rb.Size())
}

// TestInterleavedSingleReadSequence is concrete scenario 2: with only two
// slots available, the producer and consumer must interleave to make
// progress, and the consumer observes payloads in commit order.
func TestInterleavedSingleReadSequence(t *testing.T) {
	rb, err := New(32, 8)
	require.NoError(t, err)
	p := rb.Producer()
	c := rb.Consumer()

	payloads := []uint64{0x01, 0x02, 0x03, 0x04}
	var observed []uint64

	for _, v := range payloads {
		rec, ok := p.TryClaim(8)
		require.True(t, ok)
		binary.LittleEndian.PutUint64(rec.Payload(), v)
		rec.Commit(TypeData)

		got, ok := c.TryRead()
		require.True(t, ok)
		observed = append(observed, binary.LittleEndian.Uint64(got.Payload()))
		c.CommitRead(got)
	}

	require.Equal(t, payloads, observed)
}

// TestWrapBoundaryPaddingPlacement is concrete scenario 4: capacity 64,
// stride 24, so exactly 2 records fit before the 16-byte tail. After
// committing and draining the first record, a further claim must emit a
// 16-byte padding record and place the real record at offset 0.
func TestWrapBoundaryPaddingPlacement(t *testing.T) {
	rb, err := New(64, 16)
	require.NoError(t, err)
	p := rb.Producer()
	c := rb.Consumer()

	rec, ok := p.TryClaim(16)
	require.True(t, ok)
	rec.Commit(TypeData)

	got, ok := c.TryRead()
	require.True(t, ok)
	c.CommitRead(got)

	rec, ok = p.TryClaim(16)
	require.True(t, ok)
	rec.Commit(TypeData)

	rec, ok = p.TryClaim(16)
	require.True(t, ok, "third claim must pad the 16-byte tail and wrap")
	require.Equal(t, makeHeader(TypePadding, 16), loadHeaderAcquire(rb.buf, 48), "16-byte padding record at offset 48")
	require.Equal(t, uint64(0), rec.headerIndex, "real record placed at offset 0")
	rec.Commit(TypeData)

	got, ok = c.TryRead()
	require.True(t, ok, "second record, committed before the wrap")
	c.CommitRead(got)

	got, ok = c.TryRead()
	require.True(t, ok, "wrapped record, padding skipped transparently")
	c.CommitRead(got)
}

// TestBatchReadAdvancesConsumerPositionByExactStrideMultiple is concrete
// scenario 5.
func TestBatchReadAdvancesConsumerPositionByExactStrideMultiple(t *testing.T) {
	rb, err := New(1024, 8)
	require.NoError(t, err)
	p := rb.Producer()
	c := rb.Consumer()

	for i := 0; i < 10; i++ {
		rec, ok := p.TryClaim(8)
		require.True(t, ok)
		rec.Commit(TypeData)
	}

	sizeBefore := rb.Size()
	n := c.BatchRead(func(uint32, []byte, uint32, uint32, any) bool { return true }, 3, nil)
	require.Equal(t, uint32(3), n)
	require.Equal(t, sizeBefore-3*rb.RecordStride(), rb.Size())

	n = c.BatchRead(func(uint32, []byte, uint32, uint32, any) bool { return true }, 3, nil)
	require.Equal(t, uint32(3), n)
}

// TestSizeAfterQuiescenceIsZero is concrete scenario 6's correctness
// half: Size returns 0 once the producer and consumer have reached a
// common position.
func TestSizeAfterQuiescenceIsZero(t *testing.T) {
	rb, err := New(64, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rb.Size())

	p := rb.Producer()
	c := rb.Consumer()
	rec, ok := p.TryClaim(8)
	require.True(t, ok)
	rec.Commit(TypeData)
	require.NotZero(t, rb.Size())

	got, ok := c.TryRead()
	require.True(t, ok)
	c.CommitRead(got)
	require.Equal(t, uint64(0), rb.Size())
}

// TestConcurrentProducerConsumerStrictSequence is a scaled-down version
// of concrete scenario 6: a real producer goroutine and a real consumer
// goroutine on a shared RingBuffer, verifying strict monotonic sequence
// delivery with no gaps or repeats. The full 10^9-message stress run
// belongs to cmd/benchmark; this keeps the assertion without the runtime
// cost of a full stress test.
func TestConcurrentProducerConsumerStrictSequence(t *testing.T) {
	rb, err := New(4096, 8)
	require.NoError(t, err)
	const total = 200_000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p := rb.Producer()
		for i := uint64(1); i <= total; i++ {
			for {
				rec, ok := p.TryLookaheadClaim(8, 64)
				if ok {
					binary.LittleEndian.PutUint64(rec.Payload(), i)
					rec.Commit(TypeData)
					break
				}
			}
		}
	}()

	var mismatch bool
	go func() {
		defer wg.Done()
		c := rb.Consumer()
		var expected uint64
		for expected < total {
			rec, ok := c.TryRead()
			if !ok {
				continue
			}
			expected++
			if got := binary.LittleEndian.Uint64(rec.Payload()); got != expected {
				mismatch = true
			}
			c.CommitRead(rec)
		}
	}()

	wg.Wait()
	require.False(t, mismatch, "consumer must observe a strictly monotonic sequence with no gaps or repeats")
}
