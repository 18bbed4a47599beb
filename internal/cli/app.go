package cli

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/detect"
	"github.com/macropower/gitprof/pkg/repoctx"
)

// app holds the components built from the active configuration.
type app struct {
	cfg      *config.Config
	store    *config.FileStore
	builder  *repoctx.Builder
	detector *detect.Detector
}

// loadConfig loads the active configuration. The default configuration file
// is created on first use; an explicit --config path must already exist.
func (ra *RootArgs) loadConfig() (*config.FileStore, *config.Config, error) {
	path := ra.GetConfigPath()

	if ra.ConfigPath == "" {
		err := config.WriteDefaultConfig(path, false)
		if err != nil {
			slog.Warn("could not write default config", slog.Any("error", err))
		}
	}

	store := config.NewFileStore(path,
		config.WithColor(term.IsTerminal(int(os.Stderr.Fd()))), //nolint:gosec // G115: file descriptor.
	)

	cfg, err := store.Load()
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // Already annotated with the path.
	}

	slog.Debug("loaded configuration",
		slog.String("path", path),
		slog.Int("profiles", len(cfg.Profiles)),
	)

	return store, cfg, nil
}

func (ra *RootArgs) newApp(opts ...detect.DetectorOpt) (*app, error) {
	store, cfg, err := ra.loadConfig()
	if err != nil {
		return nil, err
	}

	reader, err := cfg.GitReader()
	if err != nil {
		return nil, fmt.Errorf("configure git: %w", err)
	}

	builder := repoctx.NewBuilder(reader)

	detector, err := detect.NewDetector(store, builder, cfg.DetectConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}

	return &app{
		cfg:      cfg,
		store:    store,
		builder:  builder,
		detector: detector,
	}, nil
}
