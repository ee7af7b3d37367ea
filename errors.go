// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by LayoutError. Callers compare with errors.Is.
var (
	// ErrNotPowerOfTwo is returned when the computed data region size is
	// not a power of two.
	ErrNotPowerOfTwo = errors.New("ringbuffer: data region is not a power of two")

	// ErrMisaligned is returned when the supplied buffer does not start on
	// an 8-byte boundary.
	ErrMisaligned = errors.New("ringbuffer: buffer is not 8-byte aligned")

	// ErrPayloadTooLarge is returned when the requested payload size
	// exceeds the geometry's max message length.
	ErrPayloadTooLarge = errors.New("ringbuffer: payload exceeds max message length")

	// ErrBufferSize is returned when the supplied buffer's length does not
	// match the size Layout computed for the requested geometry.
	ErrBufferSize = errors.New("ringbuffer: buffer length does not match computed layout")
)

// LayoutError reports a geometry or buffer-supply validation failure from
// Layout or Init. It wraps one of the sentinel errors above so callers can
// use errors.Is for classification while still getting the offending
// values in the error string.
type LayoutError struct {
	Err               error
	RequestedCapacity uint64
	PayloadBytes      uint32
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("ringbuffer: invalid layout (requested capacity %d, payload %d bytes): %v",
		e.RequestedCapacity, e.PayloadBytes, e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }
