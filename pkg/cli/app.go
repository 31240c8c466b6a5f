package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
	"github.com/deividlukks/Fayol-sub007/pkg/config"
	"github.com/deividlukks/Fayol-sub007/pkg/logging"
	"github.com/deividlukks/Fayol-sub007/pkg/services"
	"github.com/deividlukks/Fayol-sub007/pkg/storage"
)

// app holds what a command needs, built lazily so that commands like
// `config init` never touch storage or the network.
type app struct {
	flags *globalFlags
	cfg   *config.Config

	logger  *zap.Logger
	client  *client.Client
	svc     *services.Services
	closers []func() error
}

func (a *app) loadConfig() error {
	path := a.flags.configPath
	if path == "" {
		p, err := config.DefaultPath("")
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.flags.apiURL != "" {
		cfg.Client.BaseURL = a.flags.apiURL
	}
	if a.flags.quiet {
		cfg.Client.QuietMode = true
		cfg.Logging.Level = "warn"
	}
	switch a.flags.output {
	case outputTable, outputJSON:
	default:
		return fmt.Errorf("invalid output format %q", a.flags.output)
	}
	a.cfg = cfg
	return nil
}

// services builds the logger, storage, client and services on first use.
func (a *app) services(ctx context.Context) (*services.Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	if errs := a.cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	logger, closeLog, err := logging.New(a.cfg.LoggingOptions())
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return closeLog()
	})

	store, closeStore, err := storage.Open(ctx, a.cfg.StorageOptions(), logger.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.closers = append(a.closers, closeStore)

	c, err := client.New(a.cfg.ClientConfig(),
		client.WithLogger(logger.Named("client")),
		client.WithStorage(store),
		client.WithSessionExpired(func() {
			fmt.Fprintln(os.Stderr, "⚠️  Session expired. Run 'fayol auth login' again.")
		}),
	)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, c.Close)

	a.client = c
	a.svc = services.New(c, logger.Named("services"))
	return a.svc, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.svc = nil
	a.client = nil
	return errors.Join(errs...)
}

func (a *app) jsonOutput() bool {
	return a.flags.output == outputJSON
}

func (a *app) requireLogin(ctx context.Context) (*services.Services, error) {
	svc, err := a.services(ctx)
	if err != nil {
		return nil, err
	}
	if !svc.Auth.IsAuthenticated(ctx) {
		return nil, fmt.Errorf("not logged in; run 'fayol auth login'")
	}
	return svc, nil
}
