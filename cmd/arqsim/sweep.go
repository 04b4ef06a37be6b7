package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/soypat/arqsim/experiment"
	"github.com/soypat/arqsim/internal"
	"github.com/soypat/arqsim/metrics"
)

// writeCSVWithRetry retries a transient CSV write failure (e.g. a
// momentarily full disk) a few times with exponential backoff before
// giving up. This is real-time retry logic around I/O, outside the
// deterministic simulation core, so internal.Backoff's time.Sleep is safe
// to use here.
func writeCSVWithRetry(path string, rows []experiment.Row) error {
	b := internal.NewBackoff(internal.BackoffCriticalPath)
	var err error
	for attempt := 0; attempt < 4; attempt++ {
		if err = experiment.WriteCSV(path, rows); err == nil {
			return nil
		}
		b.Miss()
	}
	return err
}

func newSweepCmd(logLevel *string) *cobra.Command {
	var (
		gridPath    string
		out         string
		concurrency int
		totalBytes  int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the full (W, L, seed) grid sweep and write a CSV of results",
		RunE: func(cmd *cobra.Command, args []string) error {
			grid := experiment.DefaultGrid()
			if gridPath != "" {
				g, err := experiment.LoadGrid(gridPath)
				if err != nil {
					return err
				}
				grid = g
			}

			if metricsAddr != "" {
				go func() {
					_ = metrics.Serve(metricsAddr)
				}()
			}

			total := len(grid.W) * len(grid.L) * grid.Seeds
			bar := progressbar.Default(int64(total), "sweeping")

			d := &experiment.Driver{
				Grid:        grid,
				TotalBytes:  totalBytes,
				Concurrency: concurrency,
				OnRow: func(row experiment.Row) {
					_ = bar.Add(1)
					metrics.RecordRun(row.W, row.L, row.Retransmissions, row.BufferEvents, row.DelayedACKs, row.GoodputBps)
				},
			}

			rows, err := d.Run(context.Background())
			if err != nil {
				return fmt.Errorf("sweep completed with per-cell errors: %w", err)
			}
			if err := writeCSVWithRetry(out, rows); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			fmt.Printf("\nwrote %d rows to %s\n", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&gridPath, "grid", "", "YAML grid file (default: reference 6x6x10 sweep)")
	cmd.Flags().StringVar(&out, "out", "simulation_results.csv", "CSV output path")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent cells (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&totalBytes, "total-bytes", 100*1024*1024, "total workload size per cell, in bytes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "optional address to serve Prometheus /metrics on during the sweep")

	return cmd
}
