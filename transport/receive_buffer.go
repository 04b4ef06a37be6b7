package transport

// ReceiveBuffer is the transport layer's bounded receive buffer. It admits
// segments by seq, tracks total occupied bytes, and exposes the
// delayed-ACK/backpressure decisions the engine needs to schedule ACKs and
// throttle the sender.
type ReceiveBuffer struct {
	capacity     int
	usage        int
	entries      map[uint32][]byte
	nextExpected uint32 // smallest seq not yet drained by the app sink
	consumedHead int    // bytes already drained from the entry at nextExpected
}

// NewReceiveBuffer returns a ReceiveBuffer with the fixed 256 KiB capacity.
func NewReceiveBuffer() *ReceiveBuffer {
	return &ReceiveBuffer{
		capacity: BufferCapacity,
		entries:  make(map[uint32][]byte),
	}
}

// Usage returns the current buffer occupancy in bytes.
func (b *ReceiveBuffer) Usage() int { return b.usage }

// UsagePercent returns current occupancy as a percentage of capacity.
func (b *ReceiveBuffer) UsagePercent() float64 {
	return 100 * float64(b.usage) / float64(b.capacity)
}

// NextExpected returns the smallest seq not yet fully delivered to the
// application sink.
func (b *ReceiveBuffer) NextExpected() uint32 { return b.nextExpected }

// Receive applies the admission policy from the transport layer's receive
// path to a segment already verified to have arrived at the link layer:
//
//  1. If the CRC does not match the payload, reject: (false, false).
//  2. If admitting would exceed capacity, reject (backpressure): (false, false).
//  3. If seq is already buffered, accept idempotently with no usage change.
//  4. Otherwise insert and update usage.
//  5. ackNow is true iff resulting usage is at most DelayedACKThresholdPercent.
func (b *ReceiveBuffer) Receive(seq uint32, data []byte, checksum uint32) (accepted, ackNow bool) {
	if CRC32(data) != checksum {
		return false, false
	}
	if seq < b.nextExpected {
		// Already delivered to the app sink; idempotent no-op accept.
		return true, b.UsagePercent() <= DelayedACKThresholdPercent
	}
	if b.usage+len(data) > b.capacity {
		return false, false
	}
	if _, ok := b.entries[seq]; ok {
		return true, b.UsagePercent() <= DelayedACKThresholdPercent
	}
	b.entries[seq] = data
	b.usage += len(data)
	return true, b.UsagePercent() <= DelayedACKThresholdPercent
}

// Drain consumes up to maxBytes from the contiguous run of segments
// starting at NextExpected, in order. It returns the number of bytes
// actually drained. Out-of-order segments remain buffered (and counted
// against usage) until their predecessors arrive.
func (b *ReceiveBuffer) Drain(maxBytes int) int {
	drained := 0
	for drained < maxBytes {
		data, ok := b.entries[b.nextExpected]
		if !ok {
			break
		}
		remaining := len(data) - b.consumedHead
		take := maxBytes - drained
		if take > remaining {
			take = remaining
		}
		drained += take
		b.consumedHead += take
		b.usage -= take
		if b.consumedHead == len(data) {
			delete(b.entries, b.nextExpected)
			b.nextExpected++
			b.consumedHead = 0
		}
	}
	return drained
}

// Delivered returns the number of segments fully delivered to the
// application sink, i.e. NextExpected.
func (b *ReceiveBuffer) Delivered() uint32 { return b.nextExpected }
