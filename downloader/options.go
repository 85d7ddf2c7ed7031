package downloader

import (
	"io"
	"log/slog"
	"time"
)

// Config holds the session configuration.
type Config struct {
	// ReplyTimeout bounds the wait for each reply (default 3s)
	ReplyTimeout time.Duration

	// Logger receives structured session logs (default: discard)
	Logger *slog.Logger

	// Console receives BootROM text output interleaved with protocol
	// frames on the serial line (default: discard)
	Console io.Writer

	// ProgressCallback is called during transfers to report progress
	// (optional)
	ProgressCallback ProgressCallback
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReplyTimeout: 3 * time.Second,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Console:      io.Discard,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithTimeout sets the per-reply timeout.
//
// Example:
//
//	sess := downloader.New(port, downloader.WithTimeout(10*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReplyTimeout = timeout
		}
	}
}

// WithLogger sets a structured logger for session operations.
//
// Example:
//
//	sess := downloader.New(port, downloader.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithConsoleWriter sets the destination for BootROM console output that
// the target prints around protocol frames.
//
// Example:
//
//	sess := downloader.New(port, downloader.WithConsoleWriter(os.Stdout))
func WithConsoleWriter(w io.Writer) Option {
	return func(c *Config) {
		if w != nil {
			c.Console = w
		}
	}
}

// WithProgressCallback sets a callback to track transfer progress.
//
// Example:
//
//	sess := downloader.New(port,
//	    downloader.WithProgressCallback(func(p downloader.Progress) {
//	        fmt.Printf("%s: %.1f%%\n", p.Region, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}
