package simples3

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

type createFolder struct {
	baseHandler
}

func (h *createFolder) Name() string { return CommandCreateFolder }

func (h *createFolder) ValidateParams(params Params) bool {
	return h.required(params, ParamBucket, ParamKey)
}

func (h *createFolder) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	key := params.String(ParamKey)
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}

	acl := string(s3types.ACLPublicRead)
	if params.Has(ParamACL) {
		acl = params.String(ParamACL)
	}

	if err := h.checkName(key, acl); err != nil {
		h.warn(ctx, "invalid folder", "bucket", bucket, "key", key, "error", err)
		return false, err
	}

	_, err := h.client.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(h.client.encodeKey(key)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
		ACL:           types.ObjectCannedACL(acl),
	})
	if err != nil {
		err = errors.FromAWS(CommandCreateFolder, bucket, key, err)
		h.logError(ctx, "folder creation failed", err, "bucket", bucket, "key", key)
		return false, err
	}

	h.info(ctx, "folder created", "bucket", bucket, "key", key)
	h.remember(ctx, bucket, key, &s3types.Item{Bucket: bucket, Key: key})
	return true, nil
}

func (h *createFolder) checkName(key, acl string) error {
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}
	if err := validation.ValidateSafeObjectName(strings.TrimSuffix(key, "/")); err != nil {
		return err
	}
	return validation.ValidateACL(acl)
}
