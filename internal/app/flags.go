package app

import (
	"flag"

	"heat2d/internal/sim"
)

// Config represents the command-line parameters for the viewer.
type Config struct {
	Sim       sim.Config
	File      string
	Scale     int
	SPS       int
	MaxBurst  int
	HUDWidth  int
	AutoRange bool
}

// NewConfig returns a Config populated with sensible defaults. The viewer
// does not snapshot.
func NewConfig() *Config {
	sc := sim.DefaultConfig()
	sc.SnapshotEvery = 0
	return &Config{Sim: sc, Scale: 8, SPS: 240, MaxBurst: 32, HUDWidth: 260}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	c.Sim.Bind(fs)
	fs.StringVar(&c.File, "config", c.File, "load run parameters from a .json or .toml file before applying flags")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.SPS, "sps", c.SPS, "simulation steps per second")
	fs.IntVar(&c.MaxBurst, "burst", c.MaxBurst, "most steps run in a single frame")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "parameter panel width in pixels (0 hides it)")
	fs.BoolVar(&c.AutoRange, "autorange", c.AutoRange, "rescale colors to the current min/max every frame")
}
