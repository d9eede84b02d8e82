package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/younwookim/scenecore/internal/application/trace"
	"github.com/younwookim/scenecore/internal/infrastructure/config"
)

//go:embed configs
var configFS embed.FS

func main() {
	// Parse command line flags
	configFlag := flag.String("config", "", "Engine config TOML (default: embedded configs/engine.toml)")
	headlessFlag := flag.Bool("headless", false, "Run without a window on the headless backend")
	framesFlag := flag.Uint64("frames", 0, "Stop after this many frames (0 = config value)")
	traceFlag := flag.String("trace", "", "Record a frame trace to file (\"auto\" for a timestamped name)")
	inspectFlag := flag.String("inspect", "", "Print a summary of a recorded trace and exit")
	flag.Parse()

	if *inspectFlag != "" {
		data, err := trace.LoadTrace(*inspectFlag)
		if err != nil {
			log.Fatalf("Failed to load trace: %v", err)
		}
		trace.Summarize(data).Print(os.Stdout)
		return
	}

	loader, cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *headlessFlag {
		cfg.Render.Backend = config.BackendHeadless
	}
	if *framesFlag > 0 {
		cfg.Render.MaxFrames = *framesFlag
	}
	if *traceFlag != "" {
		cfg.Trace.Path = *traceFlag
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, loader, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	var runErr error
	if cfg.Render.Backend == config.BackendHeadless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		runErr = a.runHeadless(ctx)
		stop()
	} else {
		runErr = a.runWindowed()
	}
	if runErr != nil {
		logger.Error("run stopped with error", zap.Error(runErr))
	}

	if err := a.close(); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// loadConfig reads the engine config from path, or from the embedded
// configs when path is empty. Catalog and router paths resolve against the
// engine config's directory.
func loadConfig(path string) (*config.Loader, *config.Config, error) {
	var loader *config.Loader
	name := "engine.toml"
	if path == "" {
		fsys, err := fs.Sub(configFS, "configs")
		if err != nil {
			return nil, nil, fmt.Errorf("config subfs: %w", err)
		}
		loader = config.NewFSLoader(fsys, "configs")
	} else {
		loader = config.NewLoader(filepath.Dir(path))
		name = filepath.Base(path)
	}

	cfg, err := loader.LoadEngine(name)
	if err != nil {
		return nil, nil, err
	}
	return loader, cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
