package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/electron-types/fetch"
	"github.com/git-pkgs/electron-types/internal/config"
	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/logging"
	_ "github.com/git-pkgs/electron-types/internal/npm"
	"github.com/git-pkgs/electron-types/internal/releases"
)

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once and applies flag overrides.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}

		pf := cmd.Flags()
		if pf.Changed("output") {
			cfg.Output.Dir = strings.TrimSpace(c.flags.output)
		}
		if pf.Changed("log-level") {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(c.flags.logLevel))
		}
		if pf.Changed("log-format") {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(c.flags.logFormat))
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: cmd.ErrOrStderr(),
		})
		if err != nil {
			c.configErr = usage(err)
			return
		}

		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

func (c *commandContext) registryClient() *core.Client {
	return core.NewClient(
		core.WithTimeout(c.config.Timeout()),
		core.WithMaxRetries(c.config.HTTP.MaxRetries),
		core.WithBaseDelay(c.config.RetryDelay()),
		core.WithLogger(logging.Component(c.logger, "http")),
	).WithUserAgent(c.config.HTTP.UserAgent)
}

func (c *commandContext) registry(id config.Identity) (core.Registry, error) {
	reg, err := core.New(id.Ecosystem, id.RegistryURL, c.registryClient())
	if err != nil {
		return nil, usage(fmt.Errorf("%s: %w (supported: %s)", id.Name, err, strings.Join(core.SupportedEcosystems(), ", ")))
	}
	return reg, nil
}

func (c *commandContext) upstream() (core.Registry, config.Identity, error) {
	id, err := c.config.UpstreamIdentity()
	if err != nil {
		return nil, id, err
	}
	reg, err := c.registry(id)
	return reg, id, err
}

func (c *commandContext) published() (core.Registry, config.Identity, error) {
	id, err := c.config.PublishedIdentity()
	if err != nil {
		return nil, id, err
	}
	reg, err := c.registry(id)
	return reg, id, err
}

func (c *commandContext) feed() *releases.Feed {
	return releases.New(c.config.Feed.URL, c.registryClient())
}

func (c *commandContext) fetcher() *fetch.BreakerFetcher {
	f := fetch.NewFetcher(
		fetch.WithUserAgent(c.config.HTTP.UserAgent),
		fetch.WithMaxRetries(c.config.HTTP.MaxRetries),
		fetch.WithBaseDelay(c.config.RetryDelay()),
		fetch.WithTimeout(c.config.DownloadTimeout()),
		fetch.WithLogger(logging.Component(c.logger, "download")),
	)
	return fetch.NewBreakerFetcher(f, fetch.WithTripThreshold(c.config.HTTP.BreakerThreshold))
}

// withOutputLock serializes runs that write into the output directory.
func (c *commandContext) withOutputLock(ctx context.Context, fn func() error) error {
	path := c.config.LockFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("output directory %s is in use by another electron-types run (lock %s)", c.config.Output.Dir, path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("release lock failed", "path", path, "error", err)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
