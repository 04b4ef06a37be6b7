package capture

import (
	"bytes"
	"testing"
)

func TestWriteFrameRespectsMax(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 2)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := w.WriteFrame(float64(i)*0.001, uint32(i), DataFrame, 64); err != nil {
			t.Fatalf("WriteFrame(%d): %v", i, err)
		}
	}
	if w.Written() != 2 {
		t.Fatalf("expected 2 frames written, got %d", w.Written())
	}
	if !w.Truncated() {
		t.Fatal("expected truncation once max frames reached")
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty pcap output")
	}
}

func TestWriteFrameDistinguishesKinds(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 10)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteFrame(0, 0, DataFrame, 128); err != nil {
		t.Fatalf("WriteFrame data: %v", err)
	}
	if err := w.WriteFrame(0.001, 0, AckFrame, 8); err != nil {
		t.Fatalf("WriteFrame ack: %v", err)
	}
	if w.Written() != 2 {
		t.Fatalf("expected 2 frames written, got %d", w.Written())
	}
}
