// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import (
	"sync/atomic"
	"unsafe"
)

// TypePadding is the reserved message type id a padding record carries.
// Commit rejects it: callers may never publish a record of this type.
const TypePadding uint32 = 0xFFFFFFFF

// TypeData is the minimum valid caller type id. Any id in [TypeData,
// TypePadding) is accepted by Commit and handed to batch callbacks
// verbatim; this package imposes no further interpretation on it.
const TypeData uint32 = 1

// makeHeader packs a record length (payload + header, or a padding span)
// and a message type id into the 64-bit header word:
// low 32 bits = length, high 32 bits = type id. Mirrors
// original_source/ring_buffer.h's make_header (kept in record_descriptor.h,
// not itself retrieved, but fully determined by its two call sites).
func makeHeader(typeID uint32, length uint32) uint64 {
	return uint64(length) | uint64(typeID)<<32
}

func recordLength(header uint64) uint32 {
	return uint32(header)
}

func messageTypeID(header uint64) uint32 {
	return uint32(header >> 32)
}

// headerAddr returns a pointer to the 64-bit header word at the given byte
// index within buf. index must be 8-byte aligned; Init guarantees this by
// construction (capacity is a power of two >= recordAlignment and every
// slot offset is a sum of aligned strides).
func headerAddr(buf []byte, index uint64) *uint64 {
	return (*uint64)(unsafe.Pointer(&buf[index]))
}

// loadHeaderAcquire acquire-loads the header word at index, synchronizing
// with the release store a producer performs in Commit (or the
// padding-record store inside claim).
func loadHeaderAcquire(buf []byte, index uint64) uint64 {
	return atomic.LoadUint64(headerAddr(buf, index))
}

// storeHeaderRelease release-stores a header word at index, the
// linearization point that publishes a record (or a padding record) to the
// consumer.
func storeHeaderRelease(buf []byte, index uint64, value uint64) {
	atomic.StoreUint64(headerAddr(buf, index), value)
}

// zeroRange clears buf[start:start+n] to zero, re-arming the empty-header
// signal for every word the cleared span overlaps. Used by consumer commit
// paths after advancing past consumed records.
func zeroRange(buf []byte, start, n uint64) {
	clear(buf[start : start+n])
}
