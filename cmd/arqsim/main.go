// Command arqsim drives the ARQ-over-lossy-channel discrete-event
// simulation: a single (W, L, seed) run via "run", or the full grid sweep
// via "sweep".
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soypat/arqsim/internal"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "arqsim",
		Short: "Selective-Repeat ARQ over a Gilbert-Elliott channel, simulated",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error, or trace")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return nil
	}

	root.AddCommand(newRunCmd(&logLevel))
	root.AddCommand(newSweepCmd(&logLevel))
	return root
}

func newLogger(levelFlag string) *slog.Logger {
	var level slog.Level
	switch levelFlag {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "trace":
		level = internal.LevelTrace
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
