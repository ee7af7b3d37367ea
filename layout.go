// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import "math/bits"

const (
	// cacheLine is the isolation unit between control words and between
	// the control block and the data region.
	cacheLine = 64

	// recordAlignment is the byte alignment every record slot (header +
	// payload, or a padding record) is rounded up to.
	recordAlignment = 8

	// headerBytes is the size of a record's header word.
	headerBytes = 8

	// trailerLength mirrors original_source/ring_buffer.h's
	// RING_BUFFER_TRAILER_LENGTH: 8 cache lines so that each control word,
	// placed at offsets 2, 4 and 6 cache lines in, is isolated from its
	// neighbours and from the end of the data region.
	trailerLength = cacheLine * 8

	producerPositionOffset      = cacheLine * 2
	consumerCachePositionOffset = cacheLine * 4
	consumerPositionOffset      = cacheLine * 6
)

// Geometry is the byte layout computed for a given requested capacity and
// payload size. It is immutable once computed.
type Geometry struct {
	// TotalBytes is the full size of the buffer Init expects: data region
	// plus the control-word trailer.
	TotalBytes uint64
	// Capacity is the size in bytes of the power-of-two data region.
	Capacity uint64
	// RecordStride is the number of bytes one record of payloadBytes (the
	// payload size passed to Layout) occupies: header + payload, rounded up
	// to recordAlignment.
	RecordStride uint64
	// MaxMsgLength is the largest payload, in bytes, Init will accept.
	MaxMsgLength uint64
	// Mask is Capacity-1, used to fold a monotonic position into a
	// data-region byte index.
	Mask uint64
}

// Layout computes the geometry for a ring buffer sized to hold at least
// requestedCapacity bytes of data (rounded up to the next power of two)
// with records up to payloadBytes long.
//
// requestedCapacity is interpreted in bytes of data region, matching
// original_source/main_ff_spsc.c's own requested_capacity argument, which
// it feeds straight into fixed_size_ring_buffer_capacity.
func Layout(requestedCapacity uint64, payloadBytes uint32) (Geometry, error) {
	capacity := nextPow2(requestedCapacity)
	if capacity == 0 || capacity&(capacity-1) != 0 {
		return Geometry{}, &LayoutError{Err: ErrNotPowerOfTwo, RequestedCapacity: requestedCapacity, PayloadBytes: payloadBytes}
	}

	if capacity < headerBytes {
		return Geometry{}, &LayoutError{Err: ErrPayloadTooLarge, RequestedCapacity: requestedCapacity, PayloadBytes: payloadBytes}
	}
	maxMsgLength := capacity - headerBytes
	if uint64(payloadBytes) > maxMsgLength {
		return Geometry{}, &LayoutError{Err: ErrPayloadTooLarge, RequestedCapacity: requestedCapacity, PayloadBytes: payloadBytes}
	}

	stride := alignUp(headerBytes+uint64(payloadBytes), recordAlignment)

	return Geometry{
		TotalBytes:   capacity + trailerLength,
		Capacity:     capacity,
		RecordStride: stride,
		MaxMsgLength: maxMsgLength,
		Mask:         capacity - 1,
	}, nil
}

// nextPow2 rounds n up to the next power of two (n itself if already one).
// nextPow2(0) returns 1, matching original_source's next_pow_2 behavior of
// never returning a zero-sized region.
func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	return uint64(1) << bits.Len64(n)
}

// alignUp rounds n up to the nearest multiple of alignment, which must be
// a power of two.
func alignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) &^ (alignment - 1)
}
