package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soypat/arqsim/capture"
	"github.com/soypat/arqsim/engine"
	"github.com/soypat/arqsim/phy"
	"github.com/soypat/arqsim/transport"
)

func newRunCmd(logLevel *string) *cobra.Command {
	var (
		w               int
		l               int
		seed            int64
		totalBytes      int
		capturePath     string
		captureMaxFrame int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single (W, L, seed) simulation and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*logLevel)
			wl := transport.NewSyntheticWorkload(totalBytes, seed)

			cfg := engine.Config{W: w, L: l, Seed: seed, Logger: logger}

			var capWriter *capture.Writer
			if capturePath != "" {
				f, err := os.Create(capturePath)
				if err != nil {
					return fmt.Errorf("creating capture file: %w", err)
				}
				defer f.Close()
				cw, err := capture.NewWriter(f, captureMaxFrame)
				if err != nil {
					return fmt.Errorf("initializing capture writer: %w", err)
				}
				capWriter = cw
				cfg.OnFrameSend = func(t float64, seq uint32, kind engine.FrameEventKind, wireSize int) {
					ck := capture.DataFrame
					if kind == engine.FrameEventAck {
						ck = capture.AckFrame
					}
					if err := capWriter.WriteFrame(t, seq, ck, wireSize); err != nil {
						logger.Warn("capture write failed", "err", err)
					}
				}
			}

			e := engine.New(cfg, wl)
			stats := e.Run()

			goodput := 8 * float64(totalBytes) / stats.TotalTime
			utilization := goodput / phy.BitRate

			fmt.Printf("W=%d L=%d seed=%d\n", w, l, seed)
			fmt.Printf("  total_time        %.6f s\n", stats.TotalTime)
			fmt.Printf("  goodput           %.2f bps (%.4f Mbps)\n", goodput, goodput/1e6)
			fmt.Printf("  utilization       %.4f\n", utilization)
			fmt.Printf("  retransmissions   %d\n", stats.Retransmissions)
			fmt.Printf("  buffer_events     %d\n", stats.BufferEvents)
			fmt.Printf("  delayed_acks      %d\n", stats.DelayedACKs)

			if capWriter != nil && capWriter.Truncated() {
				logger.Warn("capture truncated at max frames", "max_frames", captureMaxFrame, "written", capWriter.Written())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&w, "w", 8, "sliding window size, in frames")
	cmd.Flags().IntVar(&l, "l", 1024, "payload size per segment, in bytes")
	cmd.Flags().Int64Var(&seed, "seed", 0, "PHY channel RNG seed")
	cmd.Flags().IntVar(&totalBytes, "total-bytes", 100*1024*1024, "total workload size, in bytes")
	cmd.Flags().StringVar(&capturePath, "capture", "", "optional .pcap trace output path (off by default)")
	cmd.Flags().IntVar(&captureMaxFrame, "capture-max-frames", 10000, "cap on frames recorded to --capture")

	return cmd
}
