package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/younwookim/scenecore/internal/application/game"
	"github.com/younwookim/scenecore/internal/application/render"
	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/application/scenes"
	"github.com/younwookim/scenecore/internal/application/trace"
	"github.com/younwookim/scenecore/internal/infrastructure/backend"
	"github.com/younwookim/scenecore/internal/infrastructure/config"
	"github.com/younwookim/scenecore/internal/infrastructure/script"
)

// autoTrace as the trace path picks a timestamped file name
const autoTrace = "auto"

// app wires the orchestrator, coordinator and backend for one run
type app struct {
	cfg *config.Config
	log *zap.Logger

	router    *script.Router
	orch      *scene.Orchestrator
	coord     *game.Coordinator
	window    *backend.Ebiten
	headless  *backend.Headless
	recorder  *trace.Recorder
	tracePath string
}

func newApp(cfg *config.Config, loader *config.Loader, log *zap.Logger) (*app, error) {
	cat, err := loader.LoadCatalog(cfg.Scenes.Catalog)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}

	opts := scenes.Options{
		LoadingType: scene.Type(cfg.Scenes.LoadingType),
		DT:          1.0 / float64(cfg.Display.Framerate),
		ScreenW:     cfg.Display.ScreenWidth,
		ScreenH:     cfg.Display.ScreenHeight,
	}
	if cfg.Scenes.Router != "" {
		src, err := loader.LoadScript(cfg.Scenes.Router)
		if err != nil {
			return nil, err
		}
		if a.router, err = script.NewRouter(src, log); err != nil {
			return nil, fmt.Errorf("router %s: %w", cfg.Scenes.Router, err)
		}
		opts.Router = a.router
	}

	factory := scenes.NewFactory(cat, opts, log)
	a.orch = scene.New(factory, opts.LoadingType, log)

	var be render.Backend
	switch cfg.Render.Backend {
	case config.BackendHeadless:
		a.headless = backend.NewHeadless(cfg.Render.SeparateThread, 0)
		be = a.headless
	default:
		a.window = backend.NewEbiten(true)
		be = a.window
	}

	var gopts game.Options
	if cfg.Trace.Path != "" {
		a.recorder = trace.NewRecorder()
		a.tracePath = cfg.Trace.Path
		if a.tracePath == autoTrace {
			a.tracePath = trace.GenerateFilename()
		}
		gopts.Recorder = a.recorder
	}

	a.coord = game.NewCoordinator(a.orch, be, gopts, log)

	log.Info("engine ready",
		zap.String("backend", cfg.Render.Backend),
		zap.Int("scenes", len(cat.Scenes)),
		zap.Bool("router", a.router != nil),
		zap.String("trace", a.tracePath))
	return a, nil
}

// runHeadless drives frames at the configured framerate until ctx is done or
// the frame limit is reached.
func (a *app) runHeadless(ctx context.Context) error {
	interval := time.Second / time.Duration(a.cfg.Display.Framerate)
	return a.coord.Run(ctx, interval, a.cfg.Render.MaxFrames)
}

// runWindowed hands the frame loop to ebiten until the window closes.
func (a *app) runWindowed() error {
	d := a.cfg.Display
	ebiten.SetWindowSize(d.ScreenWidth*d.Scale, d.ScreenHeight*d.Scale)
	ebiten.SetWindowTitle(d.Title)
	ebiten.SetTPS(d.Framerate)

	host := game.NewHost(a.coord, a.window, d.ScreenWidth, d.ScreenHeight, a.log)
	return ebiten.RunGame(host)
}

// close joins the render and loader goroutines, then saves the trace.
func (a *app) close() error {
	err := a.coord.Close()
	if a.router != nil {
		a.router.Close()
	}

	if a.recorder != nil {
		a.recorder.Stop()
		if saveErr := a.recorder.Save(a.tracePath); saveErr != nil {
			err = multierr.Append(err, fmt.Errorf("save trace: %w", saveErr))
		} else {
			a.log.Info("trace saved",
				zap.String("path", a.tracePath),
				zap.Int("frames", a.recorder.FrameCount()))
		}
	}
	return err
}
