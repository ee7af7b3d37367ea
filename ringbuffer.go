// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import "unsafe"

// RingBuffer is a single-producer / single-consumer fixed-stride ring
// buffer over a caller-supplied byte region. It performs no allocation
// after Init and holds no goroutine-affine state itself: [Producer] and
// [Consumer] are thin, stateless handles onto the same RingBuffer, meant
// to be held one per side for the structure's lifetime.
type RingBuffer struct {
	buf          []byte
	capacity     uint64
	mask         uint64
	recordStride uint64
	maxMsgLength uint64
}

// Init validates buf against the geometry Layout computes for
// requestedCapacity and payloadBytes, and returns a RingBuffer bound to
// it. buf must be exactly Layout(...).TotalBytes long and start on an
// 8-byte boundary; page alignment is recommended (see internal/pagebuf)
// but not required here.
//
// Init does not zero buf: per the buffer supply contract, the caller is
// responsible for zero-initializing it before use (a freshly
// make([]byte, n)-allocated slice already satisfies this). This mirrors
// original_source/ring_buffer.h's init_ring_buffer_header, which likewise
// only computes offsets and never memsets the region it is given.
func Init(buf []byte, requestedCapacity uint64, payloadBytes uint32) (*RingBuffer, error) {
	geo, err := Layout(requestedCapacity, payloadBytes)
	if err != nil {
		return nil, err
	}

	if uint64(len(buf)) != geo.TotalBytes {
		return nil, &LayoutError{Err: ErrBufferSize, RequestedCapacity: requestedCapacity, PayloadBytes: payloadBytes}
	}

	if uintptr(unsafe.Pointer(&buf[0]))%8 != 0 {
		return nil, &LayoutError{Err: ErrMisaligned, RequestedCapacity: requestedCapacity, PayloadBytes: payloadBytes}
	}

	return &RingBuffer{
		buf:          buf,
		capacity:     geo.Capacity,
		mask:         geo.Mask,
		recordStride: geo.RecordStride,
		maxMsgLength: geo.MaxMsgLength,
	}, nil
}

// New allocates a zeroed Go slice of the right size with make and calls
// Init on it. The returned buffer is not guaranteed page-aligned; use
// internal/pagebuf.Alloc plus Init directly when page alignment matters
// (e.g. to keep the trailer's cache lines from sharing a page with
// unrelated allocator metadata under heavy fragmentation).
func New(requestedCapacity uint64, payloadBytes uint32) (*RingBuffer, error) {
	geo, err := Layout(requestedCapacity, payloadBytes)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, geo.TotalBytes)
	return Init(buf, requestedCapacity, payloadBytes)
}

// Producer returns a handle for the single producer goroutine. Callers
// must not share it across goroutines.
func (rb *RingBuffer) Producer() *Producer { return &Producer{rb: rb} }

// Consumer returns a handle for the single consumer goroutine. Callers
// must not share it across goroutines.
func (rb *RingBuffer) Consumer() *Consumer { return &Consumer{rb: rb} }

// MaxMsgLength returns the largest payload, in bytes, this buffer accepts.
func (rb *RingBuffer) MaxMsgLength() uint64 { return rb.maxMsgLength }

// Capacity returns the size in bytes of the data region.
func (rb *RingBuffer) Capacity() uint64 { return rb.capacity }

// RecordStride returns the byte stride of a record carrying the
// payloadBytes passed to Init or New.
func (rb *RingBuffer) RecordStride() uint64 { return rb.recordStride }

// Size reports a stable snapshot of the number of bytes currently occupied
// by claimed-or-published records, using the double-read protocol from
// original_source/ring_buffer.h's ring_buffer_size: acquire-load the
// consumer position, then loop acquire-loading the producer position and
// the consumer position again until two consecutive consumer reads agree.
// This is for diagnostics only: it does not linearize against concurrent
// claims or reads.
func (rb *RingBuffer) Size() uint64 {
	consumerPosition := rb.consumerPositionAcquire()
	for {
		producerPosition := rb.producerPositionAcquire()
		next := rb.consumerPositionAcquire()
		if next == consumerPosition {
			return producerPosition - consumerPosition
		}
		consumerPosition = next
	}
}
