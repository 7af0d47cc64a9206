package simples3

import (
	"context"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// Item is an object returned by GetItem and stored in the cache.
type Item = s3types.Item

type loggerKey struct{}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFrom returns the execution logger stored in ctx, or fallback.
func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// baseHandler carries the client and the logging and cache helpers shared by
// the built-in handlers.
type baseHandler struct {
	client *Client
}

func (b baseHandler) logger(ctx context.Context) *slog.Logger {
	return loggerFrom(ctx, b.client.logger)
}

func (b baseHandler) debug(ctx context.Context, msg string, args ...any) {
	if l := b.logger(ctx); l != nil {
		l.DebugContext(ctx, msg, args...)
	}
}

func (b baseHandler) info(ctx context.Context, msg string, args ...any) {
	if l := b.logger(ctx); l != nil {
		l.InfoContext(ctx, msg, args...)
	}
}

func (b baseHandler) warn(ctx context.Context, msg string, args ...any) {
	if l := b.logger(ctx); l != nil {
		l.WarnContext(ctx, msg, args...)
	}
}

func (b baseHandler) logError(ctx context.Context, msg string, err error, args ...any) {
	if l := b.logger(ctx); l != nil {
		l.ErrorContext(ctx, msg, append(args, "error", err)...)
	}
}

// remember stores item in the cache. Cache failures are logged, never returned.
func (b baseHandler) remember(ctx context.Context, bucket, key string, item *s3types.Item) {
	c := b.client.cache
	if c == nil {
		return
	}
	if err := c.Set(bucket, key, item); err != nil {
		b.warn(ctx, "failed to write cache", "bucket", bucket, "key", key, "error", err)
	}
}

func (b baseHandler) required(params Params, keys ...string) bool {
	return len(validation.MissingParams(params, keys...)) == 0
}
