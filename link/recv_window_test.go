package link

import "testing"

func TestRecvWindowOutOfOrderBuffering(t *testing.T) {
	rw := NewRecvWindow(4)
	delivered, ok := rw.Receive(2, []byte("c"), 0)
	if !ok {
		t.Fatal("seq within window should be accepted")
	}
	if len(delivered) != 0 {
		t.Fatalf("no in-order delivery expected yet, got %v", delivered)
	}
	delivered, ok = rw.Receive(0, []byte("a"), 0)
	if !ok || len(delivered) != 1 || delivered[0].Seq != 0 {
		t.Fatalf("expected exactly seq 0 delivered, got %v", delivered)
	}
	delivered, ok = rw.Receive(1, []byte("b"), 0)
	if !ok || len(delivered) != 2 {
		t.Fatalf("expected seq 1 and buffered seq 2 delivered together, got %v", delivered)
	}
	if delivered[0].Seq != 1 || delivered[1].Seq != 2 {
		t.Fatalf("expected delivery order 1,2, got %v", delivered)
	}
	if rw.Base() != 3 {
		t.Fatalf("expected base=3 after draining 0,1,2, got %d", rw.Base())
	}
}

func TestRecvWindowOutsideWindowDiscarded(t *testing.T) {
	rw := NewRecvWindow(2)
	_, ok := rw.Receive(5, []byte("x"), 0)
	if ok {
		t.Fatal("seq far outside window should be discarded")
	}
	if rw.Base() != 0 {
		t.Fatalf("discarding must not move base, got %d", rw.Base())
	}
}

func TestRecvWindowIdempotentDuplicate(t *testing.T) {
	rw := NewRecvWindow(4)
	rw.Receive(1, []byte("b1"), 0)
	delivered, ok := rw.Receive(1, []byte("b2"), 0)
	if !ok {
		t.Fatal("duplicate seq should still be accepted (within window)")
	}
	if len(delivered) != 0 {
		t.Fatalf("seq 0 still missing, nothing should deliver, got %v", delivered)
	}
	// First write for seq 1 wins; second is a no-op.
	delivered, _ = rw.Receive(0, []byte("a"), 0)
	if len(delivered) != 2 || string(delivered[1].Payload) != "b1" {
		t.Fatalf("expected original payload 'b1' to survive duplicate receive, got %v", delivered)
	}
}
