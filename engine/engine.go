// Package engine wires the physical, link, and transport layers to the
// event scheduler and runs the main discrete-event simulation loop.
package engine

import (
	"log/slog"

	"github.com/soypat/arqsim/link"
	"github.com/soypat/arqsim/phy"
	"github.com/soypat/arqsim/scheduler"
	"github.com/soypat/arqsim/transport"
)

// IdleStep is how far virtual time advances when the event queue empties
// before the simulation has terminated.
const IdleStep = 0.001 // 1 ms

// Config parameterizes a single simulation run.
type Config struct {
	W    int   // sliding-window size, in frames
	L    int   // transport payload size, in bytes
	Seed int64 // PHY channel RNG seed

	// Verify, if true, accumulates delivered segment bytes in delivery
	// order so the caller can check exact reconstruction against the
	// workload. Only intended for tests; a real 100 MiB sweep run should
	// leave this false to stay within the bounded-memory design.
	Verify bool

	// Logger receives one record per retransmission/buffer event plus a
	// final summary. A nil Logger disables logging entirely.
	Logger *slog.Logger

	// OnTick, if set, is invoked once per main-loop iteration with the
	// engine's current state. Intended for test instrumentation and
	// metrics sampling; it must not mutate the engine.
	OnTick func(e *Engine)

	// OnFrameSend, if set, is invoked once per frame actually placed on
	// the wire: DATA transmissions (including retransmits) and ACK
	// transmissions, each with its virtual send time, sequence number,
	// and wire size in bytes. Intended for optional trace capture; it
	// must not mutate the engine.
	OnFrameSend func(t float64, seq uint32, kind FrameEventKind, wireSize int)
}

// FrameEventKind distinguishes a DATA frame transmission from an ACK
// transmission for OnFrameSend's benefit.
type FrameEventKind uint8

const (
	FrameEventData FrameEventKind = iota
	FrameEventAck
)

// Stats are the observable statistics of a completed run.
type Stats struct {
	TotalTime       float64
	Retransmissions int
	BufferEvents    int
	DelayedACKs     int
	DeliveredBytes  int
}

// Engine owns one simulation run's full state: PHY channel, link windows,
// transport receive buffer, and the event scheduler. It is not reusable
// across runs.
type Engine struct {
	cfg      Config
	workload transport.Workload
	totalSeg uint32

	channel *phy.Channel
	sendW   *link.SendWindow
	recvW   *link.RecvWindow
	rto     *link.RTOEstimator
	rbuf    *transport.ReceiveBuffer
	sched   scheduler.Scheduler

	now          float64
	linkFreeTime float64
	nextSegIdx   uint32

	stats    Stats
	verified []byte // present only when cfg.Verify
}

type dataArriveEvent struct {
	frame     link.Frame
	corrupted bool
}

type ackArriveEvent struct {
	seq uint32
}

type delayedAckEvent struct {
	seq uint32
}

// New constructs an Engine ready to run workload under cfg.
func New(cfg Config, workload transport.Workload) *Engine {
	e := &Engine{
		cfg:      cfg,
		workload: workload,
		totalSeg: uint32(transport.NumSegments(workload.Len(), cfg.L)),
		channel:  phy.NewChannel(cfg.Seed),
		sendW:    link.NewSendWindow(cfg.W),
		recvW:    link.NewRecvWindow(cfg.W),
		rto:      link.NewRTOEstimator(),
		rbuf:     transport.NewReceiveBuffer(),
	}
	return e
}

// Run executes the simulation to completion and returns the resulting
// Stats. Run terminates once every segment has been delivered to the
// transport layer (RecvWindow.Base() reaches the total segment count).
func (e *Engine) Run() Stats {
	if e.totalSeg == 0 {
		return e.stats
	}
	e.sched.Schedule(IdleStep, scheduler.AppConsume, nil)

	for e.recvW.Base() < e.totalSeg {
		if e.cfg.OnTick != nil {
			e.cfg.OnTick(e)
		}
		e.transmitPending()
		e.handleTimeouts()

		ev, ok := e.sched.Peek()
		if !ok {
			e.now += IdleStep
			continue
		}
		e.sched.Pop()
		e.now = ev.Time
		e.dispatch(ev)
	}

	e.stats.TotalTime = e.now
	e.log("run complete",
		"total_time", e.stats.TotalTime,
		"retransmissions", e.stats.Retransmissions,
		"buffer_events", e.stats.BufferEvents,
		"delayed_acks", e.stats.DelayedACKs,
	)
	return e.stats
}

// transmitPending sends as many new DATA frames as the window, remaining
// workload, and combined buffer admission allow.
func (e *Engine) transmitPending() {
	for e.nextSegIdx < e.totalSeg && e.sendW.CanSend() && !e.backpressured() {
		e.sendSegment(e.nextSegIdx)
		e.nextSegIdx++
	}
}

// backpressured reports whether sending one more L-byte segment would
// exceed capacity, combining the transport receive buffer's occupancy
// with the link layer's out-of-order receive buffer.
func (e *Engine) backpressured() bool {
	combined := e.rbuf.Usage() + e.recvW.BufferedBytes()
	return combined+e.cfg.L > transport.BufferCapacity
}

func (e *Engine) sendSegment(seq uint32) {
	payload := e.workload.Segment(seq, e.cfg.L)
	checksum := transport.CRC32(payload)
	frame := link.Frame{Seq: seq, Kind: link.Data, Payload: payload, Checksum: checksum}
	e.sendW.Send(frame, e.now)
	e.transmitForward(frame)
}

// transmitForward serializes frame against the shared forward-channel
// watermark, draws PHY delay/corruption, and schedules its arrival.
func (e *Engine) transmitForward(frame link.Frame) {
	size := frame.WireSize(transport.HeaderSize)
	txDelay := float64(size*8) / phy.BitRate
	arrivalDelay := phy.Delay(size, phy.Forward)
	corrupted := e.channel.CheckError(size)

	txStart := e.now
	if e.linkFreeTime > txStart {
		txStart = e.linkFreeTime
	}
	e.linkFreeTime = txStart + txDelay

	if e.cfg.OnFrameSend != nil {
		e.cfg.OnFrameSend(txStart, frame.Seq, FrameEventData, size)
	}
	e.sched.Schedule(txStart+arrivalDelay, scheduler.DataArrive, dataArriveEvent{frame: frame, corrupted: corrupted})
}

func (e *Engine) handleTimeouts() {
	timedOut := e.sendW.TimedOut(e.now, e.rto.RTO())
	for _, seq := range timedOut {
		e.stats.Retransmissions++
		frame := e.sendW.PrepareRetransmit(seq, e.now)
		e.log("timeout retransmit", "seq", seq, "rto", e.rto.RTO())
		e.transmitForward(frame)
	}
}

func (e *Engine) dispatch(ev scheduler.Event) {
	switch ev.Kind {
	case scheduler.DataArrive:
		e.onDataArrive(ev.Data.(dataArriveEvent))
	case scheduler.AckArrive:
		e.onAckArrive(ev.Data.(ackArriveEvent))
	case scheduler.DelayedAck:
		e.onDelayedAck(ev.Data.(delayedAckEvent))
	case scheduler.AppConsume:
		e.onAppConsume()
	}
}

func (e *Engine) onDataArrive(data dataArriveEvent) {
	if data.corrupted {
		return // channel corruption: dropped silently, no ACK.
	}
	delivered, ok := e.recvW.Receive(data.frame.Seq, data.frame.Payload, data.frame.Checksum)
	if !ok {
		return // outside receive window: discarded, no ACK.
	}

	ackNow := true
	rejected := false
	for _, d := range delivered {
		accepted, usageOK := e.rbuf.Receive(d.Seq, d.Payload, d.Checksum)
		if e.cfg.Verify && accepted {
			e.appendVerified(d.Seq, d.Payload)
		}
		if !accepted {
			e.stats.BufferEvents++
			e.log("buffer event", "seq", d.Seq, "usage", e.rbuf.Usage())
			rejected = true
			continue
		}
		ackNow = ackNow && usageOK
	}
	if rejected {
		return // integrity/buffer rejection: no ACK.
	}
	e.scheduleAck(data.frame.Seq, ackNow)
}

func (e *Engine) scheduleAck(seq uint32, ackNow bool) {
	if ackNow {
		e.sendAck(seq)
		return
	}
	e.stats.DelayedACKs++
	e.sched.Schedule(e.now+transport.DelayedACKDelay, scheduler.DelayedAck, delayedAckEvent{seq: seq})
}

func (e *Engine) onDelayedAck(data delayedAckEvent) {
	e.sendAck(data.seq)
}

func (e *Engine) sendAck(seq uint32) {
	if e.cfg.OnFrameSend != nil {
		e.cfg.OnFrameSend(e.now, seq, FrameEventAck, link.HeaderSize)
	}
	delay := phy.Delay(link.HeaderSize, phy.Reverse)
	e.sched.Schedule(e.now+delay, scheduler.AckArrive, ackArriveEvent{seq: seq})
}

func (e *Engine) onAckArrive(data ackArriveEvent) {
	fastRetransmit, sample, hasSample := e.sendW.ProcessAck(data.seq, e.now)
	if hasSample {
		e.rto.Sample(sample)
	}
	if fastRetransmit && e.sendW.Base() < e.sendW.Next() {
		base := e.sendW.Base()
		e.stats.Retransmissions++
		frame := e.sendW.PrepareRetransmit(base, e.now)
		e.sendW.ResetDupAcks()
		e.log("fast retransmit", "seq", base)
		e.transmitForward(frame)
	}
}

func (e *Engine) onAppConsume() {
	drained := e.rbuf.Drain(transport.SinkBytesPerTick)
	e.stats.DeliveredBytes += drained
	e.sched.Schedule(e.now+transport.SinkTickInterval, scheduler.AppConsume, nil)
}

func (e *Engine) appendVerified(seq uint32, payload []byte) {
	offset := int(seq) * e.cfg.L
	if cap(e.verified) < offset+len(payload) {
		grown := make([]byte, offset+len(payload))
		copy(grown, e.verified)
		e.verified = grown
	} else if len(e.verified) < offset+len(payload) {
		e.verified = e.verified[:offset+len(payload)]
	}
	copy(e.verified[offset:], payload)
}

// Verified returns the reconstructed byte stream when Config.Verify was
// set; it is nil otherwise.
func (e *Engine) Verified() []byte { return e.verified }

// RTO returns the current shared retransmission timeout estimate.
func (e *Engine) RTO() float64 { return e.rto.RTO() }

// BufferUsage returns the transport receive buffer's current occupancy in
// bytes.
func (e *Engine) BufferUsage() int { return e.rbuf.Usage() }

// Now returns the current virtual simulated time.
func (e *Engine) Now() float64 { return e.now }

func (e *Engine) log(msg string, args ...any) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Debug(msg, args...)
	}
}
