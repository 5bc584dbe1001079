//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"heat2d/internal/app"
	"heat2d/internal/sim"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if cfg.File != "" {
		base, err := sim.LoadFile(cfg.File)
		if err != nil {
			log.Fatal(err)
		}
		base.SnapshotEvery = 0
		if cfg.Sim, err = sim.Overlay(base, flag.CommandLine); err != nil {
			log.Fatal(err)
		}
	}

	logger := log.New(os.Stderr, "heat-view: ", log.LstdFlags)
	game, err := app.New(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("heat2d: " + cfg.Sim.Strategy)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
