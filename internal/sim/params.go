package sim

import "heat2d/internal/core"

// Parameters describes the run for HUDs and reports.
func (d *Driver) Parameters() core.ParameterSnapshot {
	cfg := d.cfg
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				core.VecParam("core", "Core cells", d.grid.Core()),
				core.VecParam("halo", "Halo width", d.grid.Halo()),
				core.VecParam("extent", "Extent", d.grid.Extent()),
				core.FloatParam("dx", "dx", d.dx),
				core.FloatParam("dy", "dy", d.dy),
			},
		},
		{
			Name: "Time",
			Params: []core.Parameter{
				core.IntParam("time_steps", "Time steps", cfg.TimeSteps),
				core.FloatParam("t_max", "End time", cfg.TMax),
				core.FloatParam("dt", "dt", d.dt),
				core.FloatParam("r", "Stability number", StabilityNumber(d.dt, d.dx, d.dy)),
			},
		},
		{
			Name: "Partitioning",
			Params: []core.Parameter{
				core.StringParam("strategy", "Strategy", d.kernel.Name()),
				core.VecParam("tile", "Tile", cfg.Tile()),
				core.IntParam("group_size", "Workers per tile", cfg.GroupSize),
				core.IntParam("workers", "Concurrent tiles", cfg.Workers),
			},
		},
		{
			Name: "Validation",
			Params: []core.Parameter{
				core.StringParam("analytic", "Reference solution", cfg.Analytic),
				core.FloatParam("threshold", "Threshold", cfg.Threshold),
				core.IntParam("snapshot_every", "Snapshot period", cfg.SnapshotEvery),
			},
		},
	}}
}
