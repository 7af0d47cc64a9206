package pool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	before    []string
	fulfilled []string
	rejected  map[string]error
}

func newRecorder() *recorder {
	return &recorder{rejected: map[string]error{}}
}

func (r *recorder) config(concurrency int) Config {
	return Config{
		Concurrency: concurrency,
		Before: func(key string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.before = append(r.before, key)
		},
		Fulfilled: func(key string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.fulfilled = append(r.fulfilled, key)
		},
		Rejected: func(key string, err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.rejected[key] = err
		},
	}
}

func TestRun_AllSucceed(t *testing.T) {
	rec := newRecorder()
	var cmds []Command
	for i := 0; i < 10; i++ {
		cmds = append(cmds, Command{
			Key:  fmt.Sprintf("key-%02d", i),
			Exec: func(context.Context) error { return nil },
		})
	}

	err := Run(context.Background(), cmds, rec.config(3))
	require.NoError(t, err)

	sort.Strings(rec.fulfilled)
	assert.Len(t, rec.before, 10)
	assert.Len(t, rec.fulfilled, 10)
	assert.Equal(t, "key-00", rec.fulfilled[0])
	assert.Empty(t, rec.rejected)
}

func TestRun_FailuresDoNotStopOthers(t *testing.T) {
	rec := newRecorder()
	errBoom := errors.New("boom")

	cmds := []Command{
		{Key: "a", Exec: func(context.Context) error { return nil }},
		{Key: "b", Exec: func(context.Context) error { return errBoom }},
		{Key: "c", Exec: func(context.Context) error { return nil }},
		{Key: "d", Exec: func(context.Context) error { return fmt.Errorf("d: %w", errBoom) }},
	}

	err := Run(context.Background(), cmds, rec.config(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	sort.Strings(rec.fulfilled)
	assert.Equal(t, []string{"a", "c"}, rec.fulfilled)
	assert.Len(t, rec.rejected, 2)
	assert.Contains(t, rec.rejected, "b")
	assert.Contains(t, rec.rejected, "d")
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	const limit = 4
	var inFlight, peak atomic.Int32

	var cmds []Command
	for i := 0; i < 20; i++ {
		cmds = append(cmds, Command{
			Key: fmt.Sprint(i),
			Exec: func(context.Context) error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			},
		})
	}

	require.NoError(t, Run(context.Background(), cmds, Config{Concurrency: limit}))
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Positive(t, peak.Load())
}

func TestRun_CancelledContextRejectsPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newRecorder()
	var ran atomic.Int32
	cmds := []Command{
		{Key: "a", Exec: func(context.Context) error { ran.Add(1); return nil }},
		{Key: "b", Exec: func(context.Context) error { ran.Add(1); return nil }},
	}

	err := Run(ctx, cmds, rec.config(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ran.Load())
	assert.Len(t, rec.rejected, 2)
	assert.Empty(t, rec.before)
}

func TestRun_DefaultsAndNilCallbacks(t *testing.T) {
	assert.NoError(t, Run(context.Background(), nil, Config{}))

	err := Run(context.Background(), []Command{
		{Key: "x", Exec: func(context.Context) error { return errors.New("x failed") }},
	}, Config{Concurrency: -1})
	assert.EqualError(t, err, "x failed")
}
