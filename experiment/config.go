// Package experiment drives the (W, L, seed) grid sweep described by
// spec.md's experiment-driver boundary: for every window size, payload
// size, and seed in the grid it runs one engine.Engine and collects a
// result row, mirroring the original 6x6x10 sweep.
package experiment

import (
	"context"
	"os"

	"github.com/sethvargo/go-envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Grid is the sweep's parameter space, loaded from a YAML file.
type Grid struct {
	W     []int `yaml:"W"`
	L     []int `yaml:"L"`
	Seeds int   `yaml:"seeds"`
}

// DefaultGrid reproduces the reference 6x6x10 sweep.
func DefaultGrid() Grid {
	return Grid{
		W:     []int{2, 4, 8, 16, 32, 64},
		L:     []int{128, 256, 512, 1024, 2048, 4096},
		Seeds: 10,
	}
}

// LoadGrid reads a Grid from a YAML file at path.
func LoadGrid(path string) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, errors.Wrapf(err, "reading grid file %q", path)
	}
	var g Grid
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Grid{}, errors.Wrapf(err, "parsing grid file %q", path)
	}
	if len(g.W) == 0 || len(g.L) == 0 || g.Seeds <= 0 {
		return Grid{}, errors.Errorf("grid file %q missing W, L, or seeds", path)
	}
	return g, nil
}

// Settings are environment-overridable driver settings, loaded with
// go-envconfig.
type Settings struct {
	OutputPath  string `env:"ARQSIM_OUT,default=simulation_results.csv"`
	Concurrency int    `env:"ARQSIM_CONCURRENCY,default=0"` // 0 = GOMAXPROCS
	LogLevel    string `env:"ARQSIM_LOG_LEVEL,default=info"`
	Capture     bool   `env:"ARQSIM_CAPTURE,default=false"`
	CaptureMax  int    `env:"ARQSIM_CAPTURE_MAX_FRAMES,default=10000"`
	TotalBytes  int    `env:"ARQSIM_TOTAL_BYTES,default=104857600"` // 100 MiB
}

// LoadSettings reads Settings from the process environment.
func LoadSettings(ctx context.Context) (Settings, error) {
	var s Settings
	if err := envconfig.Process(ctx, &s); err != nil {
		return Settings{}, errors.Wrap(err, "loading experiment settings from environment")
	}
	return s, nil
}
