package link

import "github.com/soypat/arqsim/internal"

// sendSlot is a fixed-arena send-window entry, analogous to the teacher
// pack's WindowSlot pattern: since in-flight seqs are always confined to
// [base, base+W), a W-sized array indexed by seq mod W stands in for a
// seq-keyed map.
type sendSlot struct {
	valid         bool
	frame         Frame
	sendTime      float64
	acked         bool
	retransmitted bool
}

// SendWindow is the sender side of Selective-Repeat ARQ: a fixed window of
// size W, independent per-frame timers, and duplicate-ACK tracking for
// fast retransmit.
type SendWindow struct {
	w     int
	slots []sendSlot
	base  uint32
	next  uint32

	lastAckReceived uint32
	haveLastAck     bool
	dupAckCount     int

	timedOutBuf []uint32 // reused across TimedOut calls, one per tick
}

// NewSendWindow returns a SendWindow of size w.
func NewSendWindow(w int) *SendWindow {
	return &SendWindow{
		w:     w,
		slots: make([]sendSlot, w),
	}
}

func (s *SendWindow) index(seq uint32) int { return int(seq) % s.w }

// CanSend reports whether another frame may be transmitted without
// exceeding the window: next < base + W.
func (s *SendWindow) CanSend() bool {
	return s.next < s.base+uint32(s.w)
}

// Base returns the smallest unacknowledged seq.
func (s *SendWindow) Base() uint32 { return s.base }

// Next returns the next seq to be assigned to a new frame.
func (s *SendWindow) Next() uint32 { return s.next }

// Send registers a newly transmitted frame for seq == Next(), advances
// Next, and starts its timer at now.
func (s *SendWindow) Send(frame Frame, now float64) {
	idx := s.index(s.next)
	s.slots[idx] = sendSlot{valid: true, frame: frame, sendTime: now}
	s.next++
}

// inWindow reports whether seq currently has a live, unslid send-window
// entry.
func (s *SendWindow) inWindow(seq uint32) bool {
	if seq < s.base || seq >= s.next {
		return false
	}
	slot := s.slots[s.index(seq)]
	return slot.valid && slot.frame.Seq == seq
}

// ProcessAck applies an ACK for seq arriving at time now. It returns
// whether fast retransmit should trigger (3rd duplicate ACK) and, if the
// ACK produced a valid RTT sample (Karn's algorithm: only for frames never
// retransmitted), the sample duration and true.
func (s *SendWindow) ProcessAck(seq uint32, now float64) (fastRetransmit bool, sample float64, hasSample bool) {
	if !s.haveLastAck || seq != s.lastAckReceived {
		s.lastAckReceived = seq
		s.haveLastAck = true
		s.dupAckCount = 0
	} else {
		s.dupAckCount++
	}

	if !s.inWindow(seq) {
		// seq has already slid off the window (or was never in it): never
		// fast-retransmit on its account, even if it happens to be a
		// duplicate of the last in-window ACK seen.
		return false, 0, false
	}

	idx := s.index(seq)
	slot := &s.slots[idx]
	if !slot.retransmitted {
		sample = now - slot.sendTime
		hasSample = true
	}
	slot.acked = true

	for s.base < s.next {
		bi := s.index(s.base)
		if !s.slots[bi].valid || !s.slots[bi].acked {
			break
		}
		s.slots[bi] = sendSlot{}
		s.base++
	}

	return s.dupAckCount >= 3, sample, hasSample
}

// TimedOut returns the seqs of all unacknowledged frames whose timer has
// exceeded rto as of now. The returned slice is only valid until the next
// call to TimedOut; callers must not retain it.
func (s *SendWindow) TimedOut(now, rto float64) []uint32 {
	internal.SliceReuse(&s.timedOutBuf, int(s.next-s.base))
	for seq := s.base; seq < s.next; seq++ {
		slot := &s.slots[s.index(seq)]
		if slot.valid && !slot.acked && now-slot.sendTime > rto {
			s.timedOutBuf = append(s.timedOutBuf, seq)
		}
	}
	return s.timedOutBuf
}

// PrepareRetransmit resets seq's timer and marks it retransmitted,
// returning the frame to resend. It panics if seq has no live entry;
// callers only invoke this for seqs returned by TimedOut or the base seq
// on fast retransmit, both of which are guaranteed live.
func (s *SendWindow) PrepareRetransmit(seq uint32, now float64) Frame {
	if !s.inWindow(seq) {
		panic("link: PrepareRetransmit for seq with no live send-window entry")
	}
	idx := s.index(seq)
	slot := &s.slots[idx]
	slot.sendTime = now
	slot.retransmitted = true
	return slot.frame
}

// ResetDupAcks clears the duplicate-ACK counter, used after a fast
// retransmit has been triggered.
func (s *SendWindow) ResetDupAcks() { s.dupAckCount = 0 }
