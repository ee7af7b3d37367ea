// Copyright (c) 2026 The spscring Authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ringbuffer

// Producer is a handle for the single goroutine allowed to claim and
// commit records. It carries no state of its own beyond the RingBuffer it
// wraps; all producer-side position bookkeeping lives in the buffer's
// trailer, matching original_source/ring_buffer.h's design of a single
// sp_claim/commit pair operating directly on the header.
type Producer struct {
	rb *RingBuffer
}

// ClaimedRecord is a claimed-but-not-yet-committed slot. An uncommitted
// claim leaves a zero header in place, which the consumer reads as "not yet
// published" forever: it stops at that slot and never reads past it, so a
// record that is claimed and then abandoned without Commit stalls the
// consumer for good. There is no way to un-claim.
type ClaimedRecord struct {
	rb          *RingBuffer
	headerIndex uint64
	payload     []byte
}

// Payload returns the writable region for this claim, sized exactly to
// the length requested at claim time.
func (r *ClaimedRecord) Payload() []byte { return r.payload }

// Size forwards to the wrapped RingBuffer's Size, for callers that only
// hold a Producer handle (e.g. a benchmark driver polling for drain).
func (p *Producer) Size() uint64 { return p.rb.Size() }

// TryClaim attempts to claim space for a single record of payloadLen
// bytes. It never blocks: when insufficient space is available it returns
// (nil, false) immediately, matching
// original_source/ring_buffer.h's try_ring_buffer_sp_claim with no
// lookahead.
func (p *Producer) TryClaim(payloadLen uint32) (*ClaimedRecord, bool) {
	return p.claim(payloadLen, 0)
}

// TryLookaheadClaim behaves like TryClaim but additionally tells the
// producer it is about to issue up to maxLookahead further claims of the
// same size before the consumer is expected to make progress. When the
// producer's cached view of the consumer position is stale, the claim
// refreshes it with one acquire-load and tests whether the refreshed view
// leaves room for maxLookahead+1 records. maxLookahead is advisory: a
// claim still succeeds when only one record fits, so TryLookaheadClaim
// succeeds or fails exactly where TryClaim would, and both leave the same
// refreshed position cached for the claims that follow.
func (p *Producer) TryLookaheadClaim(payloadLen uint32, maxLookahead uint32) (*ClaimedRecord, bool) {
	return p.claim(payloadLen, maxLookahead)
}

// claim implements both TryClaim (lookahead == 0) and TryLookaheadClaim,
// following original_source/ring_buffer.h's try_ring_buffer_sp_claim /
// try_claim_when_full / try_claim_when_need_pad /
// try_acquire_from_start_of_buffer chain.
func (p *Producer) claim(payloadLen uint32, lookahead uint32) (*ClaimedRecord, bool) {
	rb := p.rb
	if uint64(payloadLen) > rb.maxMsgLength {
		return nil, false
	}

	required := alignUp(headerBytes+uint64(payloadLen), recordAlignment)
	producerPosition := rb.producerPositionPlain()
	index := producerPosition & rb.mask

	cachedConsumer := rb.consumerCachePositionPlain()

	// Fast path: the last acquire-loaded consumer position already proves
	// there is room, no atomic needed this call.
	if producerPosition-cachedConsumer+required > rb.capacity {
		// Stale cache. Refresh it with a single acquire-load; later claims
		// are served from the cached value until it runs short again. The
		// lookahead-amplified requirement is tested first, but a claim
		// that misses it still succeeds if the single record fits.
		trueConsumer := rb.consumerPositionAcquire()
		rb.storeConsumerCachePositionPlain(trueConsumer)
		cachedConsumer = trueConsumer

		amplified := required * uint64(1+lookahead)
		if producerPosition-cachedConsumer+amplified > rb.capacity {
			if producerPosition-cachedConsumer+required > rb.capacity {
				return nil, false
			}
		}
	}

	// Does this record fit before the end of the data region, or do we
	// need a padding record and a wrap to index 0? The wrap/pad check
	// always uses the plain (non-amplified) requirement: the lookahead
	// amplification only governs whether we trust the cache, never
	// whether a single record fits before the wrap boundary.
	remaining := rb.capacity - index
	if required > remaining {
		// A padding record must cover the tail; the real record starts
		// fresh at index 0 and needs its own space check there.
		if producerPosition-cachedConsumer+remaining+required > rb.capacity {
			// Re-check against a freshly acquired consumer position in
			// case the cached one was already stale going into this
			// branch (try_claim_when_need_pad re-checks exactly once).
			trueConsumer := rb.consumerPositionAcquire()
			rb.storeConsumerCachePositionPlain(trueConsumer)
			if producerPosition-trueConsumer+remaining+required > rb.capacity {
				return nil, false
			}
		}

		storeHeaderRelease(rb.buf, index, makeHeader(TypePadding, uint32(remaining)))
		producerPosition += remaining
		index = 0
	}

	headerIndex := index
	payloadStart := headerIndex + headerBytes
	producerPosition += required
	rb.storeProducerPositionRelease(producerPosition)
	return &ClaimedRecord{
		rb:          rb,
		headerIndex: headerIndex,
		payload:     rb.buf[payloadStart : payloadStart+uint64(payloadLen) : payloadStart+uint64(payloadLen)],
	}, true
}

// Commit publishes the claimed record with the given message type id,
// making it visible to the consumer. typeID must be a reserved-free,
// nonzero id: 0 and TypePadding are both rejected as programming errors,
// and Commit returns false without publishing. Commit must be called
// exactly once per successful claim.
func (r *ClaimedRecord) Commit(typeID uint32) bool {
	if typeID == 0 || typeID == TypePadding {
		return false
	}
	length := uint32(headerBytes + len(r.payload))
	storeHeaderRelease(r.rb.buf, r.headerIndex, makeHeader(typeID, length))
	return true
}
