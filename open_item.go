package simples3

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

type openItem struct {
	baseHandler
}

func (h *openItem) Name() string { return CommandOpenItem }

func (h *openItem) ValidateParams(params Params) bool {
	return h.required(params, ParamBucket, ParamKey)
}

func (h *openItem) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	key := params.String(ParamKey)

	link, err := h.client.presignGetURL(ctx, bucket, key, h.client.presignExpiry)
	if err != nil {
		h.logError(ctx, "presign failed", err, "bucket", bucket, "key", key)
		return []byte(nil), err
	}

	content, err := h.client.fetchLink(ctx, link)
	if err != nil {
		err = errors.NewObjectError(CommandOpenItem, bucket, key, err)
		h.warn(ctx, "could not open item", "bucket", bucket, "key", key, "error", err)
		return []byte(nil), err
	}

	h.info(ctx, "item content obtained", "bucket", bucket, "key", key, "bytes", len(content))
	return content, nil
}

// fetchLink GETs link and returns the body of a 2xx response.
func (c *Client) fetchLink(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnexpectedStatus, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
