package pool

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Config.Concurrency is not positive.
const DefaultConcurrency = 25

// Command is one unit of work identified by Key in callbacks.
type Command struct {
	Key  string
	Exec func(ctx context.Context) error
}

// Config controls a pool run. Callbacks may be called from several
// goroutines at once and must be safe for concurrent use.
type Config struct {
	Concurrency int

	// Before is called right before a command starts
	Before func(key string)

	// Fulfilled is called after a command returned nil
	Fulfilled func(key string)

	// Rejected is called after a command failed or was skipped because ctx was done
	Rejected func(key string, err error)
}

// Run executes every command with at most cfg.Concurrency in flight and
// waits for all of them. Failures never stop the other commands. The
// returned error joins every command error, or is nil when all succeeded.
func Run(ctx context.Context, commands []Command, cfg Config) error {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(limit)

	reject := func(key string, err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		if cfg.Rejected != nil {
			cfg.Rejected(key, err)
		}
	}

	for _, cmd := range commands {
		// Go blocks while the limit is reached, so a cancelled context is
		// noticed before queuing more work.
		if err := ctx.Err(); err != nil {
			reject(cmd.Key, err)
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				reject(cmd.Key, err)
				return nil
			}

			if cfg.Before != nil {
				cfg.Before(cmd.Key)
			}

			if err := cmd.Exec(ctx); err != nil {
				reject(cmd.Key, err)
				return nil
			}

			if cfg.Fulfilled != nil {
				cfg.Fulfilled(cmd.Key)
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}
