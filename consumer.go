// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

// Consumer is a handle for the single goroutine allowed to read and
// advance past records. Like Producer, it holds no state beyond the
// RingBuffer it wraps.
type Consumer struct {
	rb *RingBuffer
}

// ReadRecord is a record returned by TryRead, pending CommitRead. Padding
// records are skipped internally and never surface here: every ReadRecord
// a caller sees carries real payload bytes and a caller-assigned type id.
type ReadRecord struct {
	rb            *RingBuffer
	startIndex    uint64
	bytesConsumed uint64
	typeID        uint32
	payload       []byte
}

// TypeID returns the message type id the producer committed this record
// with.
func (r *ReadRecord) TypeID() uint32 { return r.typeID }

// Payload returns the record's payload bytes. The slice aliases the ring
// buffer's backing array and becomes invalid after CommitRead.
func (r *ReadRecord) Payload() []byte { return r.payload }

// TryRead returns the next unread record, skipping any padding record in
// the way, or (nil, false) if the consumer has caught up with the
// producer. The returned record's slot is not reclaimed until CommitRead
// is called.
func (c *Consumer) TryRead() (*ReadRecord, bool) {
	rb := c.rb
	position := rb.consumerPositionPlain()
	index := position & rb.mask

	header := loadHeaderAcquire(rb.buf, index)
	if header == 0 {
		return nil, false
	}

	consumed := uint64(0)
	startIndex := index
	if messageTypeID(header) == TypePadding {
		padLen := alignUp(uint64(recordLength(header)), recordAlignment)
		consumed += padLen
		index = 0

		header = loadHeaderAcquire(rb.buf, index)
		if header == 0 {
			// The pad is visible but the wrapped record is not yet
			// committed: nothing to hand back this call, but the pad
			// itself cannot be un-seen, so the caller must retry; we do
			// not consume it speculatively.
			return nil, false
		}
		// startIndex stays at the padding's own offset (the tail of the
		// data region): CommitRead's wrap-aware zeroConsumedSpan needs to
		// zero from there, not from the wrapped record's offset 0, or it
		// will zero past the real record into whatever follows it.
	}

	length := recordLength(header)
	typeID := messageTypeID(header)
	payloadLen := uint64(length) - headerBytes
	consumed += alignUp(uint64(length), recordAlignment)

	payloadStart := index + headerBytes
	return &ReadRecord{
		rb:            rb,
		startIndex:    startIndex,
		bytesConsumed: consumed,
		typeID:        typeID,
		payload:       rb.buf[payloadStart : payloadStart+payloadLen : payloadStart+payloadLen],
	}, true
}

// CommitRead releases r's slot back to the producer: it zeroes the
// consumed span (re-arming the empty-header signal) and release-stores
// the advanced consumer position. r must not be used again afterward.
func (c *Consumer) CommitRead(r *ReadRecord) {
	rb := c.rb
	zeroConsumedSpan(rb, r.startIndex, r.bytesConsumed)
	rb.storeConsumerPositionRelease(rb.consumerPositionPlain() + r.bytesConsumed)
}

// zeroConsumedSpan clears [start, start+n) in rb.buf, wrapping once around
// the end of the data region if the span crosses it. A single TryRead's
// consumed span crosses the wrap boundary only when it skipped a padding
// record immediately followed by the real record at index 0; BatchRead
// never needs this because it bounds each zeroed span to end at the
// boundary by construction.
func zeroConsumedSpan(rb *RingBuffer, start, n uint64) {
	if start+n <= rb.capacity {
		zeroRange(rb.buf, start, n)
		return
	}
	head := rb.capacity - start
	zeroRange(rb.buf, start, head)
	zeroRange(rb.buf, 0, n-head)
}

// BatchCallback is invoked once per record a batch read delivers. buffer
// is the ring buffer's backing array; payloadOffset and payloadLen locate
// the record's payload within it. Returning false stops the batch after
// this record, but the record itself is still consumed: it will not be
// redelivered on a later call.
type BatchCallback func(typeID uint32, buffer []byte, payloadOffset uint32, payloadLen uint32, ctx any) bool

// BatchRead delivers up to maxCount records to cb, skipping padding
// records transparently, and publishes the advanced consumer position
// once after the whole batch (or once after the last record delivered, if
// cb returns false early or the buffer runs dry). The walk never crosses
// the data region's wrap boundary within a single call: it stops once
// bytesConsumed reaches capacity-index, exactly as
// original_source/ring_buffer.h's ring_buffer_batch_read bounds its own
// loop with bytes_consumed < remaining_bytes. A subsequent call starts
// fresh at index 0 and may deliver more. Because publication is
// deferred, a crash between records in a batch can cause the unpublished
// records to be redelivered, but never double-zeroed: the zero-fill for a
// batch is also deferred to the single final release store's sibling
// call.
func (c *Consumer) BatchRead(cb BatchCallback, maxCount uint32, ctx any) uint32 {
	rb := c.rb
	position := rb.consumerPositionPlain()
	index := position & rb.mask
	remaining := rb.capacity - index
	bytesConsumed := uint64(0)
	delivered := uint32(0)

	for delivered < maxCount && bytesConsumed < remaining {
		cursor := index + bytesConsumed

		header := loadHeaderAcquire(rb.buf, cursor)
		if header == 0 {
			break
		}

		if messageTypeID(header) == TypePadding {
			padLen := alignUp(uint64(recordLength(header)), recordAlignment)
			bytesConsumed += padLen
			continue
		}

		length := recordLength(header)
		typeID := messageTypeID(header)
		payloadLen := length - headerBytes

		accepted := cb(typeID, rb.buf, uint32(cursor)+headerBytes, payloadLen, ctx)
		bytesConsumed += alignUp(uint64(length), recordAlignment)
		delivered++
		if !accepted {
			break
		}
	}

	if bytesConsumed > 0 {
		zeroConsumedSpan(rb, index, bytesConsumed)
		rb.storeConsumerPositionRelease(position + bytesConsumed)
	}
	return delivered
}

// StreamBatchRead behaves like BatchRead but publishes the advanced
// consumer position after every delivered record instead of once at the
// end, trading throughput for a tighter bound on how much work a crash
// mid-batch can cause the producer to believe is still outstanding. It
// observes the same per-call wrap-boundary bound as BatchRead: the walk
// stops once the bytes consumed since the call started reach the data
// region's end, rather than wrapping cursor within a single call.
func (c *Consumer) StreamBatchRead(cb BatchCallback, maxCount uint32, ctx any) uint32 {
	rb := c.rb
	position := rb.consumerPositionPlain()
	startIndex := position & rb.mask
	remaining := rb.capacity - startIndex
	totalConsumed := uint64(0)
	delivered := uint32(0)
	pendingZeroStart := startIndex
	pendingZeroLen := uint64(0)

	for delivered < maxCount && totalConsumed < remaining {
		cursor := (position + pendingZeroLen) & rb.mask

		header := loadHeaderAcquire(rb.buf, cursor)
		if header == 0 {
			break
		}

		if messageTypeID(header) == TypePadding {
			padLen := alignUp(uint64(recordLength(header)), recordAlignment)
			pendingZeroLen += padLen
			totalConsumed += padLen
			continue
		}

		length := recordLength(header)
		typeID := messageTypeID(header)
		payloadLen := length - headerBytes

		accepted := cb(typeID, rb.buf, uint32(cursor)+headerBytes, payloadLen, ctx)

		recordSpan := alignUp(uint64(length), recordAlignment)
		pendingZeroLen += recordSpan
		totalConsumed += recordSpan
		zeroConsumedSpan(rb, pendingZeroStart, pendingZeroLen)
		position += pendingZeroLen
		rb.storeConsumerPositionRelease(position)
		delivered++

		pendingZeroStart = position & rb.mask
		pendingZeroLen = 0

		if !accepted {
			break
		}
	}

	// A padding record ends the walk at the wrap boundary; release it too so
	// the next call starts at index 0 instead of finding the same padding.
	if pendingZeroLen > 0 {
		zeroConsumedSpan(rb, pendingZeroStart, pendingZeroLen)
		rb.storeConsumerPositionRelease(position + pendingZeroLen)
	}

	return delivered
}
