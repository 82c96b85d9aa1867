package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/invitations/internal/cache"
	"github.com/roach88/invitations/internal/config"
	"github.com/roach88/invitations/internal/engine"
	"github.com/roach88/invitations/internal/logging"
	"github.com/roach88/invitations/internal/registry"
	"github.com/roach88/invitations/internal/store"
)

// service is the engine wired from configuration for one command.
type service struct {
	engine  *engine.Engine
	log     *zap.Logger
	metrics *prometheus.Registry
	closers []func() error
}

// Close releases the store and cache connections.
func (s *service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	_ = s.log.Sync()
	return errors.Join(errs...)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// openService builds the engine from configuration. Callers must Close it.
func openService(ctx context.Context, opts *RootOptions) (*service, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	s := &service{log: log, metrics: prometheus.NewRegistry()}

	components := registry.New()
	if cfg.ComponentsFile != "" {
		components, err = registry.LoadFile(cfg.ComponentsFile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load components", err)
		}
	}

	backend, err := openCache(ctx, cfg, s)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	metrics, err := cache.NewMetrics(s.metrics)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	log.Debug("opening database", zap.String("path", cfg.DatabasePath))
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	s.closers = append(s.closers, st.Close)

	s.engine = engine.New(st,
		engine.WithCache(cache.NewLayer(backend, cache.WithLogger(log), cache.WithMetrics(metrics))),
		engine.WithComponents(components),
		engine.WithLogger(log),
	)
	return s, nil
}

func openCache(ctx context.Context, cfg config.Config, s *service) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.Noop{}, nil
	case config.CacheMemory:
		return cache.NewMemory(cfg.Cache.MemoryBytes), nil
	case config.CacheRedis:
		rc := cfg.RedisCache()
		client, err := cache.NewRedisClient(ctx, rc)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		return cache.NewRedis(client, rc), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// withService opens the service, runs fn and closes it.
func withService(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *service, out *OutputFormatter) error) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openService(ctx, opts)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			s.log.Error("error closing service", zap.Error(closeErr))
		}
	}()
	err = fn(ctx, s, out)
	s.reportMetrics(out)
	return err
}

// reportMetrics prints the non-zero cache counters in verbose mode.
func (s *service) reportMetrics(out *OutputFormatter) {
	if !out.Verbose {
		return
	}
	families, err := s.metrics.Gather()
	if err != nil {
		s.log.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			out.VerboseLog("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), v)
		}
	}
}
