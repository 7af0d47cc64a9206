package simples3

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

type copyItem struct {
	baseHandler
}

func (h *copyItem) Name() string { return CommandCopyItem }

func (h *copyItem) ValidateParams(params Params) bool {
	return h.required(params, ParamTargetBucket, ParamTarget, ParamSourceBucket, ParamSource)
}

func (h *copyItem) Handle(ctx context.Context, params Params) (any, error) {
	targetBucket := params.String(ParamTargetBucket)
	target := params.String(ParamTarget)
	sourceBucket := params.String(ParamSourceBucket)
	source := params.String(ParamSource)

	if err := h.client.CreateBucketIfNotExists(ctx, targetBucket); err != nil {
		h.logError(ctx, "failed to ensure target bucket", err, "bucket", targetBucket)
		return false, err
	}

	if err := h.client.copyObject(ctx, sourceBucket, source, targetBucket, target); err != nil {
		h.logError(ctx, "copy failed", err,
			"source_bucket", sourceBucket, "source", source,
			"bucket", targetBucket, "key", target)
		return false, err
	}

	h.info(ctx, "item copied",
		"source_bucket", sourceBucket, "source", source,
		"bucket", targetBucket, "key", target)
	h.remember(ctx, targetBucket, target, &s3types.Item{Bucket: targetBucket, Key: target})
	return true, nil
}

// copyObject copies sourceBucket/source to targetBucket/target server side.
func (c *Client) copyObject(ctx context.Context, sourceBucket, source, targetBucket, target string) error {
	_, err := c.s3Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(targetBucket),
		Key:        aws.String(c.encodeKey(target)),
		CopySource: aws.String(copySource(sourceBucket, c.encodeKey(source))),
	})
	return errors.FromAWS("copyObject", targetBucket, target, err)
}

// copySource builds the x-amz-copy-source value. Each key segment is
// escaped, the separators are not.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segments, "/")
}
