// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import "sync/atomic"

// The three control words live in the trailer appended after the data
// region (see layout.go), each on its own cache line so producer-owned and
// consumer-owned state never shares a line with the other side or with the
// data region. The producer and consumer positions each have a plain
// (relaxed, same-goroutine-only) accessor and acquire/release accessors;
// the producer-private cache position has plain accessors only. Which one a
// call site uses
// follows the table in spec.md's memory-ordering contract exactly.

func (rb *RingBuffer) producerPositionAddr() *uint64 {
	return headerAddr(rb.buf, rb.capacity+producerPositionOffset)
}

func (rb *RingBuffer) consumerCachePositionAddr() *uint64 {
	return headerAddr(rb.buf, rb.capacity+consumerCachePositionOffset)
}

func (rb *RingBuffer) consumerPositionAddr() *uint64 {
	return headerAddr(rb.buf, rb.capacity+consumerPositionOffset)
}

// producerPositionPlain is a same-goroutine (producer-owned) read: no
// other goroutine ever writes this word, so no atomic is required.
func (rb *RingBuffer) producerPositionPlain() uint64 {
	return *rb.producerPositionAddr()
}

func (rb *RingBuffer) producerPositionAcquire() uint64 {
	return atomic.LoadUint64(rb.producerPositionAddr())
}

func (rb *RingBuffer) storeProducerPositionRelease(v uint64) {
	atomic.StoreUint64(rb.producerPositionAddr(), v)
}

// consumerCachePosition is private to the producer: only the producer ever
// reads or writes it, so both sides of this accessor are plain.
func (rb *RingBuffer) consumerCachePositionPlain() uint64 {
	return *rb.consumerCachePositionAddr()
}

func (rb *RingBuffer) storeConsumerCachePositionPlain(v uint64) {
	*rb.consumerCachePositionAddr() = v
}

// consumerPositionPlain is a same-goroutine (consumer-owned) read.
func (rb *RingBuffer) consumerPositionPlain() uint64 {
	return *rb.consumerPositionAddr()
}

func (rb *RingBuffer) consumerPositionAcquire() uint64 {
	return atomic.LoadUint64(rb.consumerPositionAddr())
}

func (rb *RingBuffer) storeConsumerPositionRelease(v uint64) {
	atomic.StoreUint64(rb.consumerPositionAddr(), v)
}
