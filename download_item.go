package simples3

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

type downloadItem struct {
	baseHandler
}

func (h *downloadItem) Name() string { return CommandDownloadItem }

func (h *downloadItem) ValidateParams(params Params) bool {
	return h.required(params, ParamBucket, ParamKey)
}

func (h *downloadItem) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	key := params.String(ParamKey)
	saveAs := key
	if params.Has(ParamSaveAs) {
		saveAs = params.String(ParamSaveAs)
	}

	dest, err := h.client.localPath(saveAs)
	if err != nil {
		return false, errors.NewObjectError(CommandDownloadItem, bucket, key, err).WithMessage("resolve save_as")
	}

	out, err := h.client.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(h.client.encodeKey(key)),
	})
	if err != nil {
		err = errors.FromAWS(CommandDownloadItem, bucket, key, err)
		h.logError(ctx, "download failed", err, "bucket", bucket, "key", key)
		return false, err
	}
	defer func() { _ = out.Body.Close() }()

	n, err := h.client.writeFile(dest, out.Body)
	if err != nil {
		err = errors.NewObjectError(CommandDownloadItem, bucket, key, err).WithMessage("write " + dest)
		h.warn(ctx, "download could not be saved", "bucket", bucket, "key", key, "save_as", dest, "error", err)
		return false, err
	}

	h.info(ctx, "item downloaded", "bucket", bucket, "key", key, "save_as", dest, "bytes", n)
	return true, nil
}

// localPath resolves p on the client filesystem. Relative paths are taken
// from the working directory when the OS filesystem is in use. Any other
// filesystem is rooted at "/" and paths climbing above it are rejected.
func (c *Client) localPath(p string) (string, error) {
	if c.osFS {
		return filepath.Abs(p)
	}

	rel := strings.TrimLeft(filepath.ToSlash(p), "/")
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", errors.ErrInvalidInput)
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: path %q leaves the filesystem root", errors.ErrInvalidInput, p)
	}
	return path.Clean("/" + rel), nil
}

// writeFile creates name on the client filesystem with its parent
// directories and copies r into it.
func (c *Client) writeFile(name string, r io.Reader) (int64, error) {
	if dir := filepath.Dir(name); dir != "." && dir != "/" {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}

	f, err := c.fs.Create(name)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
