package simples3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

type getBucketSize struct {
	baseHandler
}

func (h *getBucketSize) Name() string { return CommandGetBucketSize }

func (h *getBucketSize) ValidateParams(params Params) bool {
	return h.required(params, ParamBucket)
}

func (h *getBucketSize) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	prefix := params.String(ParamPrefix)

	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(h.client.encodeKey(prefix))
	}

	var size, count int64
	paginator := s3.NewListObjectsV2Paginator(h.client.s3Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			err = errors.FromAWS(CommandGetBucketSize, bucket, "", err)
			h.logError(ctx, "listing failed", err, "bucket", bucket, "prefix", prefix)
			return int64(0), err
		}
		for _, obj := range page.Contents {
			size += aws.ToInt64(obj.Size)
			count++
		}
	}

	h.info(ctx, "bucket size obtained", "bucket", bucket, "prefix", prefix, "objects", count, "bytes", size)
	return size, nil
}
