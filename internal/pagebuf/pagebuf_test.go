// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pagebuf

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestAllocReturnsExactlyRequestedLength(t *testing.T) {
	buf, err := Alloc(100)
	require.NoError(t, err)
	require.Len(t, buf, 100)
	require.NoError(t, Free(buf))
}

func TestAllocZeroFilled(t *testing.T) {
	buf, err := Alloc(4096 * 2)
	require.NoError(t, err)
	defer Free(buf)
	for i, b := range buf {
		require.Zero(t, b, "byte %d should be zero on a fresh anonymous mapping", i)
	}
}

func TestAllocIsPageAligned(t *testing.T) {
	buf, err := Alloc(1)
	require.NoError(t, err)
	defer Free(buf)
	require.Len(t, buf, 1)
	require.Zero(t, uintptr(unsafe.Pointer(&buf[0]))%pageSize)
}
