// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pagebuf allocates page-aligned, anonymous memory for use as a
// ring buffer's backing region. Page alignment keeps the trailer's
// cache-line-isolated control words from ever sharing a page with
// unrelated allocator bookkeeping, which matters most for the benchmark
// driver in cmd/benchmark where producer and consumer run on separate
// OS threads.
package pagebuf

import "golang.org/x/sys/unix"

const pageSize = 4096

// Alloc returns an anonymous, zero-filled, page-aligned mapping of at
// least n bytes, rounded up to a whole number of pages. Callers that only
// need a []byte for ringbuffer.Init without the page-alignment guarantee
// should just use make([]byte, n) and ringbuffer.New instead.
func Alloc(n int) ([]byte, error) {
	if n <= 0 {
		n = 1
	}
	padded := (n + pageSize - 1) &^ (pageSize - 1)

	data, err := unix.Mmap(-1, 0, padded,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	// Keep the mapping's full padded capacity so Free can munmap the
	// entire region; only the length is trimmed to what was requested.
	return data[:n], nil
}

// Free unmaps a buffer returned by Alloc. buf must be the exact slice
// Alloc returned (the full-length, full-capacity form); passing a
// reslice of it is an error.
func Free(buf []byte) error {
	if cap(buf) == 0 {
		return nil
	}
	return unix.Munmap(buf[:cap(buf)])
}
