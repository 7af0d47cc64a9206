package simples3

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/metrics"
)

// Built-in command names.
const (
	CommandCopyItem          = "CopyItem"
	CommandCopyInBatch       = "CopyInBatch"
	CommandCreateFolder      = "CreateFolder"
	CommandDownloadItem      = "DownloadItem"
	CommandGetBucketSize     = "GetBucketSize"
	CommandGetItem           = "GetItem"
	CommandGetPublicItemLink = "GetPublicItemLink"
	CommandOpenItem          = "OpenItem"
	CommandUploadItem        = "UploadItem"
)

// CommandHandler is one named command runnable through Client.Execute.
type CommandHandler interface {
	// Name is the name the handler is registered under.
	Name() string

	// ValidateParams reports whether params hold everything Handle needs.
	// It only checks presence; Handle reports unusable values as errors.
	ValidateParams(params Params) bool

	// Handle runs the command.
	Handle(ctx context.Context, params Params) (any, error)
}

func (c *Client) registerBuiltins() {
	base := baseHandler{client: c}
	for _, h := range []CommandHandler{
		&copyItem{base},
		&copyInBatch{base},
		&createFolder{base},
		&downloadItem{base},
		&getBucketSize{base},
		&getItem{base},
		&getPublicItemLink{base},
		&openItem{base},
		&uploadItem{base},
	} {
		c.handlers[h.Name()] = h
	}
}

// Register adds a handler. Names are unique; registering a taken name fails
// with ErrCommandExists.
func (c *Client) Register(h CommandHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.handlers[h.Name()]; exists {
		return errors.NewError("register", errors.ErrCommandExists).WithMessage(h.Name())
	}
	c.handlers[h.Name()] = h
	return nil
}

// Commands returns the registered command names in sorted order.
func (c *Client) Commands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.handlers))
	for name := range c.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute validates params and runs the command registered under name.
// Each execution logs with the command name and a fresh execution id.
func (c *Client) Execute(ctx context.Context, name string, params Params) (any, error) {
	c.mu.RLock()
	h, ok := c.handlers[name]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.NewError("execute", errors.ErrUnknownCommand).WithMessage(name)
	}

	if params == nil {
		params = Params{}
	}

	start := time.Now()
	if c.logger != nil {
		ctx = withLogger(ctx, c.logger.With("command", name, "execution_id", uuid.NewString()))
	}

	if !h.ValidateParams(params) {
		c.metrics.ObserveCommand(name, metrics.OutcomeInvalid, time.Since(start))
		if l := loggerFrom(ctx, c.logger); l != nil {
			l.WarnContext(ctx, "invalid params", "params", paramKeys(params))
		}
		return nil, errors.NewError(name, errors.ErrInvalidParams)
	}

	res, err := h.Handle(ctx, params)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	c.metrics.ObserveCommand(name, outcome, time.Since(start))

	return res, err
}

func paramKeys(p Params) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// execAs runs a command and narrows its result to T.
func execAs[T any](ctx context.Context, c *Client, name string, params Params) (T, error) {
	var zero T
	res, err := c.Execute(ctx, name, params)
	if v, ok := res.(T); ok {
		return v, err
	}
	return zero, err
}

// CopyItem copies source_bucket/source to target_bucket/target, creating the
// target bucket when needed.
func (c *Client) CopyItem(ctx context.Context, params Params) (bool, error) {
	return execAs[bool](ctx, c, CommandCopyItem, params)
}

// CopyInBatch copies files.source from source_bucket into target_bucket
// (default: source_bucket), renaming through files.target when given.
func (c *Client) CopyInBatch(ctx context.Context, params Params) (bool, error) {
	return execAs[bool](ctx, c, CommandCopyInBatch, params)
}

// CreateFolder creates the folder marker bucket/key/.
func (c *Client) CreateFolder(ctx context.Context, params Params) (bool, error) {
	return execAs[bool](ctx, c, CommandCreateFolder, params)
}

// DownloadItem saves bucket/key to save_as (default: key) on the local filesystem.
func (c *Client) DownloadItem(ctx context.Context, params Params) (bool, error) {
	return execAs[bool](ctx, c, CommandDownloadItem, params)
}

// GetBucketSize returns the total size in bytes of the objects under prefix in bucket.
func (c *Client) GetBucketSize(ctx context.Context, params Params) (int64, error) {
	return execAs[int64](ctx, c, CommandGetBucketSize, params)
}

// GetItem returns bucket/key, from the cache when it holds the content.
func (c *Client) GetItem(ctx context.Context, params Params) (*Item, error) {
	return execAs[*Item](ctx, c, CommandGetItem, params)
}

// GetPublicItemLink returns a presigned GET link for bucket/key valid for expires.
func (c *Client) GetPublicItemLink(ctx context.Context, params Params) (string, error) {
	return execAs[string](ctx, c, CommandGetPublicItemLink, params)
}

// OpenItem downloads bucket/key through a presigned link and returns its content.
func (c *Client) OpenItem(ctx context.Context, params Params) ([]byte, error) {
	return execAs[[]byte](ctx, c, CommandOpenItem, params)
}

// UploadItem uploads body, or the local file, to bucket/key.
func (c *Client) UploadItem(ctx context.Context, params Params) (bool, error) {
	return execAs[bool](ctx, c, CommandUploadItem, params)
}
