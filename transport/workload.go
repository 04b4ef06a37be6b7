package transport

import "math/rand"

// Workload produces segment payloads on demand. Segment returns the bytes
// for segment seq given the workload's total size and the configured
// payload size l; it must be deterministic for a given (seq, n, l).
//
// A real 100 MiB workload never needs to be held in full: only segment
// lengths and CRCs drive the simulation, and the transport receive buffer
// is bounded to 256 KiB regardless of total workload size, so a Workload
// may synthesize bytes on demand instead of slicing a stored buffer.
type Workload interface {
	// Len returns the total workload size in bytes.
	Len() int
	// Segment returns the payload bytes for segment seq of length l.
	Segment(seq uint32, l int) []byte
}

// BytesWorkload is a Workload backed by an in-memory byte slice.
type BytesWorkload []byte

func (w BytesWorkload) Len() int { return len(w) }

func (w BytesWorkload) Segment(seq uint32, l int) []byte {
	n := SegmentLen(seq, len(w), l)
	if n == 0 {
		return nil
	}
	start := int(seq) * l
	return w[start : start+n]
}

// SyntheticWorkload generates deterministic per-segment bytes from a seeded
// PRNG instead of storing the workload, bounding memory use independently
// of the configured total size. Two SyntheticWorkload values with the same
// seed and total size produce byte-identical segments for every seq.
type SyntheticWorkload struct {
	total int
	seed  int64
}

// NewSyntheticWorkload returns a Workload of totalBytes that synthesizes
// segment contents deterministically from seed.
func NewSyntheticWorkload(totalBytes int, seed int64) SyntheticWorkload {
	return SyntheticWorkload{total: totalBytes, seed: seed}
}

func (w SyntheticWorkload) Len() int { return w.total }

func (w SyntheticWorkload) Segment(seq uint32, l int) []byte {
	n := SegmentLen(seq, w.total, l)
	if n == 0 {
		return nil
	}
	// Derive a per-segment independent stream so segments can be
	// regenerated in any order with identical content, keyed off the
	// workload seed and the segment index.
	src := rand.NewSource(w.seed ^ int64(uint64(seq)*0x9E3779B97F4A7C15))
	rng := rand.New(src)
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}
