// Package lifecycle runs the process main function under signal handling.
// SIGINT and SIGTERM cancel the root context; the main function gets a grace
// period to return before the process gives up on it.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Exit codes returned by Run.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// ShutdownConfig configures the shutdown behavior.
type ShutdownConfig struct {
	GracePeriod time.Duration // time mainFn has to return after a signal
}

// DefaultShutdownConfig returns sensible defaults.
func DefaultShutdownConfig() ShutdownConfig {
	return ShutdownConfig{
		GracePeriod: 5 * time.Second,
	}
}

// Manager ties a main function to process signals.
type Manager struct {
	config  ShutdownConfig
	logger  *slog.Logger
	signals chan os.Signal
	started time.Time
}

// NewManager creates a lifecycle manager.
func NewManager(config ShutdownConfig, logger *slog.Logger) *Manager {
	return &Manager{
		config:  config,
		logger:  logger,
		signals: make(chan os.Signal, 1),
		started: time.Now(),
	}
}

// Run installs signal handlers, runs mainFn, and returns an exit code.
func (m *Manager) Run(mainFn func(ctx context.Context) error) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signal.Notify(m.signals, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(m.signals)

	errCh := make(chan error, 1)
	go func() {
		errCh <- mainFn(ctx)
	}()

	select {
	case err := <-errCh:
		return m.exitCode(err)

	case sig := <-m.signals:
		m.logger.Info("received signal, cancelling run",
			"signal", sig.String(),
			"uptime", m.Uptime().String(),
		)
		cancel()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error("main function error after signal", "error", err)
			}
		case <-time.After(m.config.GracePeriod):
			m.logger.Warn("main function did not return within grace period",
				"grace_period", m.config.GracePeriod,
			)
		}
		return ExitInterrupted
	}
}

func (m *Manager) exitCode(err error) int {
	if err != nil {
		m.logger.Error("main function error", "error", err, "uptime", m.Uptime().String())
		return ExitError
	}
	return ExitOK
}

// Uptime returns how long the process has been running.
func (m *Manager) Uptime() time.Duration {
	return time.Since(m.started)
}
