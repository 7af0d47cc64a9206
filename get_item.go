package simples3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

type getItem struct {
	baseHandler
}

func (h *getItem) Name() string { return CommandGetItem }

func (h *getItem) ValidateParams(params Params) bool {
	return h.required(params, ParamBucket, ParamKey)
}

func (h *getItem) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	key := params.String(ParamKey)

	if c := h.client.cache; c != nil {
		item, ok := c.Get(bucket, key)
		hit := ok && item.HasBody()
		h.client.metrics.CacheLookup(hit)
		if hit {
			h.debug(ctx, "item served from cache", "bucket", bucket, "key", key)
			return item, nil
		}
	}

	item, err := h.client.fetchItem(ctx, bucket, key)
	if err != nil {
		h.logError(ctx, "get failed", err, "bucket", bucket, "key", key)
		return (*Item)(nil), err
	}

	h.info(ctx, "item obtained", "bucket", bucket, "key", key, "bytes", item.ContentLength)
	h.remember(ctx, bucket, key, item)
	return item, nil
}

// fetchItem reads bucket/key fully.
func (c *Client) fetchItem(ctx context.Context, bucket, key string) (*s3types.Item, error) {
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(c.encodeKey(key)),
	})
	if err != nil {
		return nil, errors.FromAWS(CommandGetItem, bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.NewObjectError(CommandGetItem, bucket, key, err).WithMessage("read body")
	}

	return &s3types.Item{
		Bucket:        bucket,
		Key:           key,
		Body:          body,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: int64(len(body)),
		ETag:          aws.ToString(out.ETag),
		LastModified:  aws.ToTime(out.LastModified),
		Metadata:      out.Metadata,
	}, nil
}
