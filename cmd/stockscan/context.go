package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stockscan/internal/config"
	"stockscan/internal/logging"
	"stockscan/internal/queue"
	"stockscan/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce  sync.Once
	logger      *slog.Logger
	loggerClose func() error
	loggerErr   error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger from the loaded configuration.
// Console output goes to stderr so tables and JSON on stdout stay clean.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, closeFn, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.logger = logger
		c.loggerClose = closeFn
	})
	return c.logger, c.loggerErr
}

// withSession opens a scanning session, runs fn and closes the session
// with the command's context detached from cancellation, so an interrupt
// still lets the final flush and lock release happen.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*session.Session) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	sess, err := session.Open(cmd.Context(), cfg, logger)
	if err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			return fmt.Errorf("%w (lock %s)", err, cfg.LockPath())
		}
		return err
	}
	defer func() {
		if closeErr := sess.Close(contextWithoutCancel(cmd)); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(sess)
}

// withStore opens the offline queue without taking the session lock. It is
// used by read-only commands that may run beside a scanning session.
func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withLockedStore opens the offline queue under the session lock without
// starting a session, for commands that change the queue but must not
// talk to the server.
func (c *commandContext) withLockedStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := session.WithStore(cfg, fn); err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			return fmt.Errorf("%w (lock %s)", err, cfg.LockPath())
		}
		return err
	}
	return nil
}

func (c *commandContext) close() error {
	if c.loggerClose == nil {
		return nil
	}
	closeFn := c.loggerClose
	c.loggerClose = nil
	return closeFn()
}

func contextWithoutCancel(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithoutCancel(ctx)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
