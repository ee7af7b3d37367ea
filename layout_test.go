// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutRoundsCapacityUpToPowerOfTwo(t *testing.T) {
	geo, err := Layout(100, 16)
	require.NoError(t, err)
	require.Equal(t, uint64(128), geo.Capacity)
	require.Equal(t, uint64(127), geo.Mask)
	require.Equal(t, geo.Capacity+trailerLength, geo.TotalBytes)
}

func TestLayoutAlreadyPowerOfTwo(t *testing.T) {
	geo, err := Layout(64, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(64), geo.Capacity)
}

func TestLayoutZeroCapacityRoundsToOneThenRejected(t *testing.T) {
	// nextPow2(0) rounds to 1, but a 1-byte data region can't even hold a
	// single 8-byte header: Layout must reject it rather than underflow
	// maxMsgLength.
	_, err := Layout(0, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPayloadTooLarge))
}

func TestLayoutRejectsCapacitySmallerThanHeader(t *testing.T) {
	for _, capacity := range []uint64{1, 2, 4} {
		_, err := Layout(capacity, 0)
		require.Error(t, err, "capacity %d is smaller than the 8-byte header", capacity)
	}
}

func TestLayoutSmallestValidCapacity(t *testing.T) {
	geo, err := Layout(8, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(8), geo.Capacity)
	require.Equal(t, uint64(0), geo.MaxMsgLength)
}

func TestLayoutPayloadTooLarge(t *testing.T) {
	_, err := Layout(64, 100)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPayloadTooLarge))
}

func TestLayoutRecordStrideAlignment(t *testing.T) {
	geo, err := Layout(64, 9)
	require.NoError(t, err)
	// header (8) + payload (9) = 17, rounded up to 24.
	require.Equal(t, uint64(24), geo.RecordStride)
}

func TestInitRejectsWrongBufferSize(t *testing.T) {
	geo, err := Layout(64, 8)
	require.NoError(t, err)
	buf := make([]byte, geo.TotalBytes-1)
	_, err = Init(buf, 64, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBufferSize))
}

func TestInitAcceptsExactBufferSize(t *testing.T) {
	geo, err := Layout(64, 8)
	require.NoError(t, err)
	buf := make([]byte, geo.TotalBytes)
	rb, err := Init(buf, 64, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(64), rb.Capacity())
}
