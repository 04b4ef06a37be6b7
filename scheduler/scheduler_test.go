package scheduler

import "testing"

func TestFIFOTiebreak(t *testing.T) {
	var s Scheduler
	s.Schedule(1.0, DataArrive, 1)
	s.Schedule(1.0, DataArrive, 2)
	s.Schedule(1.0, DataArrive, 3)
	s.Schedule(0.5, AckArrive, 4)

	ev := s.Pop()
	if ev.Time != 0.5 || ev.Data.(int) != 4 {
		t.Fatalf("expected earliest time first, got %+v", ev)
	}
	for _, want := range []int{1, 2, 3} {
		ev = s.Pop()
		if ev.Data.(int) != want {
			t.Fatalf("expected FIFO order among same-time events: want %d got %v", want, ev.Data)
		}
	}
	if !s.Empty() {
		t.Fatal("expected empty queue")
	}
}

func TestMonotoneOrdering(t *testing.T) {
	var s Scheduler
	times := []float64{5, 1, 4, 2, 3}
	for _, tm := range times {
		s.Schedule(tm, AppConsume, nil)
	}
	last := -1.0
	for !s.Empty() {
		ev := s.Pop()
		if ev.Time < last {
			t.Fatalf("time went backwards: %v after %v", ev.Time, last)
		}
		last = ev.Time
	}
}

func TestReset(t *testing.T) {
	var s Scheduler
	s.Schedule(1, DataArrive, nil)
	s.Schedule(2, DataArrive, nil)
	s.Reset()
	if !s.Empty() || s.Len() != 0 {
		t.Fatal("expected empty scheduler after Reset")
	}
	s.Schedule(1, DataArrive, "a")
	s.Schedule(1, DataArrive, "b")
	ev := s.Pop()
	if ev.Data.(string) != "a" {
		t.Fatalf("expected tiebreak counter reset, got %v first", ev.Data)
	}
}
