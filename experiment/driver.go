package experiment

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/soypat/arqsim/engine"
	"github.com/soypat/arqsim/phy"
	"github.com/soypat/arqsim/transport"
)

// Row is one grid cell's result, mirroring the reference driver's per-run
// record (main.py's results dict) plus DelayedACKs, which spec.md's stats
// module names but the reference driver predates.
type Row struct {
	RunID           string
	W               int
	L               int
	Seed            int64
	GoodputBps      float64
	TotalTime       float64
	AvgRTT          float64
	Retransmissions int
	BufferEvents    int
	DelayedACKs     int
	Utilization     float64
}

// Driver runs the full (W, L, seed) grid concurrently and collects one Row
// per cell.
type Driver struct {
	Grid        Grid
	TotalBytes  int
	Concurrency int
	// OnRow, if set, is called synchronously as each row completes. It may
	// be used to feed a metrics recorder or progress bar.
	OnRow func(Row)
}

// Run executes every grid cell, bounded by Concurrency workers (GOMAXPROCS
// if zero), and returns all rows. A per-cell failure (e.g. a future
// invalid parameter combination) is aggregated via go-multierror rather
// than aborting the remaining cells.
func (d *Driver) Run(ctx context.Context) ([]Row, error) {
	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	type cell struct {
		w, l int
		seed int64
	}
	var cells []cell
	for _, w := range d.Grid.W {
		for _, l := range d.Grid.L {
			for seed := 0; seed < d.Grid.Seeds; seed++ {
				cells = append(cells, cell{w: w, l: l, seed: int64(seed)})
			}
		}
	}

	rows := make([]Row, len(cells))
	errs := make([]error, len(cells))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range cells {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			row, err := runCell(d.TotalBytes, c.w, c.l, c.seed)
			if err != nil {
				errs[i] = err
				return nil // aggregated below; don't cancel sibling cells
			}
			rows[i] = row
			if d.OnRow != nil {
				d.OnRow(row)
			}
			return nil
		})
	}
	_ = g.Wait() // errs populated above; g itself never returns an error

	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return rows, merr.ErrorOrNil()
}

func runCell(totalBytes, w, l int, seed int64) (Row, error) {
	wl := transport.NewSyntheticWorkload(totalBytes, seed)
	e := engine.New(engine.Config{W: w, L: l, Seed: seed}, wl)
	stats := e.Run()

	goodput := 8 * float64(totalBytes) / stats.TotalTime
	utilization := goodput / phy.BitRate
	// Simplified RTT estimation, mirroring main.py's avg_rtt: total_time
	// spread evenly across the run's segment count.
	avgRTT := stats.TotalTime / (float64(totalBytes) / float64(l))

	return Row{
		RunID:           uuid.NewString(),
		W:               w,
		L:               l,
		Seed:            seed,
		GoodputBps:      goodput,
		TotalTime:       stats.TotalTime,
		AvgRTT:          avgRTT,
		Retransmissions: stats.Retransmissions,
		BufferEvents:    stats.BufferEvents,
		DelayedACKs:     stats.DelayedACKs,
		Utilization:     utilization,
	}, nil
}
