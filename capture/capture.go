// Package capture optionally records the simulated frame exchange as a
// .pcap trace for offline inspection. It is diagnostic tooling: capture
// never feeds back into simulation state, and is bounded by the maxFrames
// cap given to NewWriter so
// it cannot affect the core simulation's memory bounds or determinism.
package capture

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	wire "github.com/soypat/arqsim"
	"github.com/soypat/arqsim/ethernet"
	"github.com/soypat/arqsim/ipv4"
)

// simulated source/destination placeholders: this is not a real network
// capture, just a diagnostic wrapper around simulated frame events.
var (
	srcMAC = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	dstMAC = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	srcIP  = [4]byte{10, 0, 0, 1}
	dstIP  = [4]byte{10, 0, 0, 2}
)

// IANA reserves 253 and 254 "for experimentation" (RFC 3692); used here to
// tag captured DATA and ACK frames respectively. These carry no real
// transport semantics.
const (
	protoDataFrame wire.IPProto = 253
	protoAckFrame  wire.IPProto = 254
)

// FrameKind distinguishes a captured DATA frame from a captured ACK frame.
type FrameKind uint8

const (
	DataFrame FrameKind = iota
	AckFrame
)

// Writer wraps a pcapgo.Writer, capping the number of frames captured.
type Writer struct {
	w         *pcapgo.Writer
	max       int
	written   int
	truncated bool
}

// NewWriter returns a Writer that writes an Ethernet-link-type pcap file to
// out, capturing at most maxFrames frames.
func NewWriter(out io.Writer, maxFrames int) (*Writer, error) {
	w := pcapgo.NewWriter(out)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return nil, err
	}
	return &Writer{w: w, max: maxFrames}, nil
}

// WriteFrame captures one simulated frame event at virtual time t
// (seconds), wrapping it in a synthetic Ethernet+IPv4 packet whose payload
// length equals the simulated frame's wire size.
func (w *Writer) WriteFrame(t float64, seq uint32, kind FrameKind, wireSize int) error {
	if w.written >= w.max {
		w.truncated = true
		return nil
	}

	buf := make([]byte, 14+20+wireSize)
	efrm, err := ethernet.NewFrame(buf)
	if err != nil {
		return err
	}
	efrm.SetEtherType(ethernet.TypeIPv4)
	*efrm.SourceHardwareAddr() = srcMAC
	*efrm.DestinationHardwareAddr() = dstMAC

	ifrm, err := ipv4.NewFrame(efrm.Payload())
	if err != nil {
		return err
	}
	ifrm.SetVersionAndIHL(4, 5)
	ifrm.SetTotalLength(uint16(20 + wireSize))
	ifrm.SetID(uint16(seq))
	ifrm.SetTTL(64)
	*ifrm.SourceAddr() = srcIP
	*ifrm.DestinationAddr() = dstIP
	proto := protoDataFrame
	if kind == AckFrame {
		proto = protoAckFrame
	}
	ifrm.SetProtocol(proto)
	if payload := ifrm.Payload(); len(payload) >= 4 {
		binary.BigEndian.PutUint32(payload[:4], seq)
	}
	ifrm.SetCRC(ifrm.CalculateHeaderCRC())

	sec := int64(t)
	nsec := int64((t - float64(sec)) * 1e9)
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Unix(sec, nsec),
		CaptureLength: len(buf),
		Length:        len(buf),
	}
	if err := w.w.WritePacket(ci, buf); err != nil {
		return err
	}
	w.written++
	return nil
}

// Truncated reports whether the capture hit its maxFrames cap and dropped
// subsequent frames.
func (w *Writer) Truncated() bool { return w.truncated }

// Written returns the number of frames actually captured.
func (w *Writer) Written() int { return w.written }
