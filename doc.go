// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ringbuffer implements a single-producer / single-consumer (SPSC)
// lock-free fixed-stride ring buffer over a caller-supplied byte region.
//
// # Thread-Safety Guarantees
//
// Exactly one goroutine may hold and call methods on the [Producer] side,
// and exactly one (possibly different) goroutine may hold and call methods
// on the [Consumer] side. No other goroutine may touch the backing buffer.
// Violating this causes data races and undefined behavior; this package
// does not detect misuse.
//
// # Wire Protocol
//
// Records are written back-to-back into a power-of-two data region. Each
// record carries an 8-byte header (low 32 bits: total record length
// including the header; high 32 bits: a caller-defined message type id) at
// the start of its slot, followed by the raw payload bytes. A header value
// of zero means the slot has not yet been published. When a record would
// straddle the end of the data region, the producer instead emits a
// padding record covering the remaining bytes and places the real record
// at index 0; consumers skip padding records transparently.
//
// # Memory Layout
//
// [Init] expects a single contiguous, 8-byte-aligned byte slice of exactly
// the size [Layout] computes: a power-of-two data region followed by an
// 8-cache-line trailer holding the producer position, the producer's
// cached consumer position, and the consumer position, each on its own
// 64-byte-aligned line so the two sides never false-share.
//
// # Usage
//
//	geo, err := ringbuffer.Layout(64*1024, 64)
//	buf := make([]byte, geo.TotalBytes) // already zeroed by make([]byte, n)
//	rb, err := ringbuffer.Init(buf, 64*1024, 64)
//	producer := rb.Producer()
//	consumer := rb.Consumer()
//
//	// producer goroutine
//	if rec, ok := producer.TryClaim(8); ok {
//	    binary.LittleEndian.PutUint64(rec.Payload(), 1)
//	    rec.Commit(ringbuffer.TypeData)
//	}
//
//	// consumer goroutine
//	if rec, ok := consumer.TryRead(); ok {
//	    _ = rec.Payload()
//	    consumer.CommitRead(rec)
//	}
package ringbuffer
