package sim

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"heat2d/internal/core"
	"heat2d/internal/validate"
)

// ErrInvalidConfig reports a configuration value outside its legal range.
var ErrInvalidConfig = errors.New("heat2d: invalid configuration")

// Config controls one simulation run. Spacing and time step are derived:
// dx = 1/(cols+2*halo-1), dy = 1/(rows+2*halo-1), dt = TMax/TimeSteps.
type Config struct {
	CoreRows int `json:"core_rows" toml:"core_rows"`
	CoreCols int `json:"core_cols" toml:"core_cols"`
	HaloRows int `json:"halo_rows" toml:"halo_rows"`
	HaloCols int `json:"halo_cols" toml:"halo_cols"`

	TimeSteps int     `json:"time_steps" toml:"time_steps"`
	TMax      float64 `json:"t_max" toml:"t_max"`

	TileRows  int    `json:"tile_rows" toml:"tile_rows"`
	TileCols  int    `json:"tile_cols" toml:"tile_cols"`
	Strategy  string `json:"strategy" toml:"strategy"`
	GroupSize int    `json:"group_size" toml:"group_size"`
	Workers   int    `json:"workers" toml:"workers"`
	Align     int    `json:"align" toml:"align"`

	// SnapshotEvery is the snapshot period in steps; zero disables snapshots.
	SnapshotEvery int `json:"snapshot_every" toml:"snapshot_every"`

	// Threshold bounds the validator's maximum absolute error. It has to be
	// loosened along with O(dx^2 + dy^2 + dt) when the resolution drops.
	Threshold float64 `json:"threshold" toml:"threshold"`
	Analytic  string  `json:"analytic" toml:"analytic"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		CoreRows:      64,
		CoreCols:      64,
		HaloRows:      1,
		HaloCols:      1,
		TimeSteps:     4000,
		TMax:          0.1,
		TileRows:      16,
		TileCols:      16,
		Strategy:      "cached",
		GroupSize:     4,
		Align:         8,
		SnapshotEvery: 100,
		Threshold:     validate.DefaultThreshold,
		Analytic:      "sine",
	}
}

// Grid builds the grid described by the core and halo extents.
func (c Config) Grid() (core.Grid, error) {
	return core.NewGrid(core.Vec2{c.CoreRows, c.CoreCols}, core.Vec2{c.HaloRows, c.HaloCols})
}

// Tile returns the tile extent.
func (c Config) Tile() core.Vec2 { return core.Vec2{c.TileRows, c.TileCols} }

// Spacing returns dx and dy of the configured grid, or zeros when the grid is
// invalid.
func (c Config) Spacing() (dx, dy float64) {
	g, err := c.Grid()
	if err != nil {
		return 0, 0
	}
	return g.Spacing()
}

// Dt is the time step TMax/TimeSteps.
func (c Config) Dt() float64 {
	if c.TimeSteps <= 0 {
		return 0
	}
	return c.TMax / float64(c.TimeSteps)
}

// Check reports the first out-of-range field.
func (c Config) Check() error {
	if _, err := c.Grid(); err != nil {
		return err
	}
	switch {
	case c.TimeSteps <= 0:
		return fmt.Errorf("time_steps %d: %w", c.TimeSteps, ErrInvalidConfig)
	case c.TMax <= 0:
		return fmt.Errorf("t_max %g: %w", c.TMax, ErrInvalidConfig)
	case c.Threshold <= 0:
		return fmt.Errorf("threshold %g: %w", c.Threshold, ErrInvalidConfig)
	case c.SnapshotEvery < 0:
		return fmt.Errorf("snapshot_every %d: %w", c.SnapshotEvery, ErrInvalidConfig)
	}
	return nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparseable or out-of-range values keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	positive := map[string]*int{
		"core_rows":  &c.CoreRows,
		"core_cols":  &c.CoreCols,
		"halo_rows":  &c.HaloRows,
		"halo_cols":  &c.HaloCols,
		"time_steps": &c.TimeSteps,
		"tile_rows":  &c.TileRows,
		"tile_cols":  &c.TileCols,
		"group_size": &c.GroupSize,
		"align":      &c.Align,
	}
	for key, dst := range positive {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				*dst = parsed
			}
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["snapshot_every"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.SnapshotEvery = parsed
		}
	}
	if v, ok := cfg["t_max"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.TMax = parsed
		}
	}
	if v, ok := cfg["threshold"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Threshold = parsed
		}
	}
	if v, ok := cfg["strategy"]; ok && v != "" {
		c.Strategy = v
	}
	if v, ok := cfg["analytic"]; ok && v != "" {
		c.Analytic = v
	}
	return c
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.CoreRows, "rows", c.CoreRows, "core cells along y")
	fs.IntVar(&c.CoreCols, "cols", c.CoreCols, "core cells along x")
	fs.IntVar(&c.HaloRows, "halo-rows", c.HaloRows, "halo width along y")
	fs.IntVar(&c.HaloCols, "halo-cols", c.HaloCols, "halo width along x")
	fs.IntVar(&c.TimeSteps, "steps", c.TimeSteps, "number of time steps")
	fs.Float64Var(&c.TMax, "tmax", c.TMax, "simulated end time")
	fs.IntVar(&c.TileRows, "tile-rows", c.TileRows, "tile extent along y (must divide rows)")
	fs.IntVar(&c.TileCols, "tile-cols", c.TileCols, "tile extent along x (must divide cols)")
	fs.StringVar(&c.Strategy, "strategy", c.Strategy, "stencil read strategy: direct or cached")
	fs.IntVar(&c.GroupSize, "group", c.GroupSize, "workers per tile")
	fs.IntVar(&c.Workers, "workers", c.Workers, "tiles processed concurrently (0 = GOMAXPROCS)")
	fs.IntVar(&c.Align, "align", c.Align, "row pitch alignment in elements")
	fs.IntVar(&c.SnapshotEvery, "snapshot-every", c.SnapshotEvery, "snapshot period in steps (0 disables)")
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "maximum absolute error accepted by validation")
	fs.StringVar(&c.Analytic, "analytic", c.Analytic, "reference solution: sine or zero")
}

// LoadFile decodes a .json or .toml file over the defaults. Unknown keys are
// rejected.
func LoadFile(path string) (Config, error) {
	c := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &c)
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("load %s: unknown keys %v: %w", path, undecoded, ErrInvalidConfig)
		}
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
		defer f.Close()
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return Config{}, fmt.Errorf("load %s: trailing data after config object: %w", path, ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("load %s: unsupported extension: %w", path, ErrInvalidConfig)
	}
	return c, nil
}

// Overlay returns base with every flag explicitly set on fs re-applied on
// top. It lets a config file provide defaults that command-line flags
// override.
func Overlay(base Config, fs *flag.FlagSet) (Config, error) {
	c := base
	tmp := flag.NewFlagSet("overlay", flag.ContinueOnError)
	c.Bind(tmp)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil || tmp.Lookup(f.Name) == nil {
			return
		}
		err = tmp.Set(f.Name, f.Value.String())
	})
	return c, err
}
