package simples3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/validation"
)

// CreateBucketIfNotExists creates bucket unless it already exists.
// A bucket already owned by the caller counts as existing.
func (c *Client) CreateBucketIfNotExists(ctx context.Context, bucket string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	if headErr := errors.FromAWS("createBucketIfNotExists", bucket, "", err); !errors.IsBucketNotFound(headErr) {
		return headErr
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region := c.Region(); region != "" && region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		createErr := errors.FromAWS("createBucketIfNotExists", bucket, "", err)
		if errors.IsBucketAlreadyOwned(createErr) {
			return nil
		}
		return createErr
	}

	if l := loggerFrom(ctx, c.logger); l != nil {
		l.InfoContext(ctx, "bucket created", "bucket", bucket, "region", c.Region())
	}
	return nil
}
