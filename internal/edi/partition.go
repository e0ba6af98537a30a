package edi

// This file implements C4: grouping a flat segment stream into the
// claim-sized (837) or remittance-claim-sized (835) blocks the streaming
// parser hands to callbacks, without ever buffering more than one block
// at a time (spec.md §4.4).
//
// An 837 block runs from one CLM segment up to (but not including) the
// next CLM or the closing SE. An 835 block runs from one CLP segment up
// to the next CLP or the closing SE. Segments preceding the first block
// marker within a transaction (the header loop: BPR, TRN, REF, DTM, N1
// for the payer) are collected separately as the envelope/header block.

// Block is a contiguous run of segments belonging to one claim (837) or
// one remittance claim (835), plus the header segments that preceded the
// first block marker in this transaction, if Block is itself the header.
type Block struct {
	Marker   Segment   // the CLM or CLP segment that opened this block
	Segments []Segment // segments between this marker and the next, exclusive
}

// blockMarkers identifies, per transaction kind, which segment id starts
// a new block.
func blockMarker(kind TransactionKind) string {
	if kind == KindRemittance {
		return "CLP"
	}
	return "CLM"
}

// Partitioner consumes segments from a Reader and yields header and
// per-claim Blocks. It holds at most one block's segments in memory at a
// time; segments belonging to a block already delivered are never
// retained (spec.md §4.4, §9 memory bound).
type Partitioner struct {
	rd     *Reader
	marker string
	lookahead *Segment // one segment of lookahead to detect block boundaries
	exhausted bool
}

// NewPartitioner builds a Partitioner for the given transaction kind.
func NewPartitioner(rd *Reader, kind TransactionKind) *Partitioner {
	return &Partitioner{rd: rd, marker: blockMarker(kind)}
}

// Header reads and returns all segments up to (exclusive of) the first
// block marker. Call this exactly once, before any call to Next.
func (p *Partitioner) Header() ([]Segment, error) {
	var header []Segment
	for {
		seg, err := p.rd.Next()
		if err != nil {
			return header, err
		}
		if seg.ID == p.marker {
			p.lookahead = &seg
			return header, nil
		}
		if seg.ID == "SE" {
			// transaction closed with no claims at all
			p.exhausted = true
			return header, nil
		}
		header = append(header, seg)
	}
}

// Next returns the next Block, or (Block{}, false, nil) once the
// transaction's SE segment has been consumed with no further blocks.
func (p *Partitioner) Next() (Block, bool, error) {
	if p.exhausted || p.lookahead == nil {
		return Block{}, false, nil
	}

	block := Block{Marker: *p.lookahead}
	p.lookahead = nil

	for {
		seg, err := p.rd.Next()
		if err != nil {
			p.exhausted = true
			return block, true, err
		}
		if seg.ID == p.marker {
			p.lookahead = &seg
			return block, true, nil
		}
		if seg.ID == "SE" {
			p.exhausted = true
			return block, true, nil
		}
		block.Segments = append(block.Segments, seg)
	}
}
