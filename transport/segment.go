// Package transport implements the transport layer: segmentation of a
// workload into fixed-size payloads, per-segment CRC-32 integrity, the
// bounded receive buffer with backpressure and delayed-ACK policy, and the
// application sink that drains delivered bytes at a fixed rate.
package transport

import "hash/crc32"

const (
	// HeaderSize is the transport-layer header overhead accounted for by
	// the link layer when framing a segment; it is never materialized
	// into Data.
	HeaderSize = 8

	// BufferCapacity is the fixed size of the transport receive buffer.
	BufferCapacity = 256 * 1024 // 256 KiB

	// DelayedACKThresholdPercent is the receive-buffer usage percentage
	// above which ACKs are deferred instead of sent immediately.
	DelayedACKThresholdPercent = 80

	// DelayedACKDelay is how long a deferred ACK is held before being
	// promoted to an in-flight ACK_ARRIVE event.
	DelayedACKDelay = 0.010 // 10 ms

	// SinkRateBytesPerSec is the application sink's fixed drain rate,
	// equal to the channel bit rate in bytes per second.
	SinkRateBytesPerSec = phyBitRate / 8

	// SinkTickInterval is the virtual-time period between sink drains.
	SinkTickInterval = 0.001 // 1 ms

	// SinkBytesPerTick is how many bytes the sink drains per tick, derived
	// from SinkRateBytesPerSec * SinkTickInterval = 1.25 MB/s * 1ms.
	SinkBytesPerTick = 1250

	phyBitRate = 10_000_000
)

// NumSegments returns the number of segments of size l needed to cover n
// bytes: ceil(n / l).
func NumSegments(n, l int) int {
	if n <= 0 {
		return 0
	}
	return (n + l - 1) / l
}

// SegmentLen returns the length in bytes of segment seq for a workload of
// total size n split into chunks of size l; the final segment may be
// shorter than l.
func SegmentLen(seq uint32, n, l int) int {
	start := int(seq) * l
	if start >= n {
		return 0
	}
	end := start + l
	if end > n {
		end = n
	}
	return end - start
}

// CRC32 computes the IEEE CRC-32 of data, the transport layer's integrity
// code. This is distinct from the link layer's historical RFC791 ones'
// complement checksum: transport integrity in this design is a literal
// CRC-32 over the segment payload.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
