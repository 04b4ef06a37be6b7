package experiment

import (
	"context"
	"testing"
)

func TestDriverRunsFullGrid(t *testing.T) {
	d := &Driver{
		Grid:       Grid{W: []int{2, 4}, L: []int{128, 256}, Seeds: 2},
		TotalBytes: 20000,
	}
	rows, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := len(d.Grid.W) * len(d.Grid.L) * d.Grid.Seeds
	if len(rows) != want {
		t.Fatalf("expected %d rows, got %d", want, len(rows))
	}
	for _, r := range rows {
		if r.TotalTime <= 0 {
			t.Fatalf("row %+v has non-positive total time", r)
		}
		if r.RunID == "" {
			t.Fatal("expected non-empty run id")
		}
	}
}

func TestDefaultGridMatchesReferenceSweep(t *testing.T) {
	g := DefaultGrid()
	if len(g.W) != 6 || len(g.L) != 6 || g.Seeds != 10 {
		t.Fatalf("expected 6x6x10 grid, got %dx%dx%d", len(g.W), len(g.L), g.Seeds)
	}
}
