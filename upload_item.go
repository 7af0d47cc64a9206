package simples3

import (
	"bufio"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// sniffLen is how much of the content is read to detect its type.
const sniffLen = 3072

type uploadItem struct {
	baseHandler
}

func (h *uploadItem) Name() string { return CommandUploadItem }

func (h *uploadItem) ValidateParams(params Params) bool {
	if !h.required(params, ParamBucket, ParamKey) {
		return false
	}
	return params.Has(ParamBody) || params.Has(ParamFile)
}

func (h *uploadItem) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	key := params.String(ParamKey)

	input, err := h.buildInput(params, bucket, key)
	if err != nil {
		h.warn(ctx, "invalid upload", "bucket", bucket, "key", key, "error", err)
		return false, err
	}

	src, closeSrc, err := h.source(params)
	if err != nil {
		err = errors.NewObjectError(CommandUploadItem, bucket, key, err).WithMessage("open source")
		h.warn(ctx, "invalid upload", "bucket", bucket, "key", key, "error", err)
		return false, err
	}
	defer closeSrc()

	br := bufio.NewReaderSize(src, sniffLen)
	if input.ContentType == nil {
		// Peek returns what it could read along with io.EOF on short content.
		head, _ := br.Peek(sniffLen)
		input.ContentType = aws.String(mimetype.Detect(head).String())
	}
	input.Body = br

	out, err := h.client.uploader.Upload(ctx, input)
	if err != nil {
		err = errors.FromAWS(CommandUploadItem, bucket, key, err)
		h.logError(ctx, "upload failed", err, "bucket", bucket, "key", key)
		return false, err
	}

	h.info(ctx, "item uploaded", "bucket", bucket, "key", key, "content_type", aws.ToString(input.ContentType))
	h.remember(ctx, bucket, key, &s3types.Item{
		Bucket:      bucket,
		Key:         key,
		ContentType: aws.ToString(input.ContentType),
		ETag:        aws.ToString(out.ETag),
		Metadata:    input.Metadata,
	})
	return true, nil
}

// buildInput validates the object name and the optional params and maps them
// to a PutObjectInput without body.
func (h *uploadItem) buildInput(params Params, bucket, key string) (*s3.PutObjectInput, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}
	if err := validation.ValidateSafeObjectName(key); err != nil {
		return nil, err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(h.client.encodeKey(key)),
	}

	if params.Has(ParamContentType) {
		ct := params.String(ParamContentType)
		if err := validation.ValidateContentType(ct); err != nil {
			return nil, err
		}
		input.ContentType = aws.String(ct)
	}

	if params.Has(ParamACL) {
		acl := params.String(ParamACL)
		if err := validation.ValidateACL(acl); err != nil {
			return nil, err
		}
		input.ACL = types.ObjectCannedACL(acl)
	}

	metadata, err := params.StringMap(ParamMetadata)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateMetadata(metadata); err != nil {
		return nil, err
	}
	input.Metadata = metadata

	return input, nil
}

// source returns the upload content: the body param when set, else the
// file param opened on the client filesystem.
func (h *uploadItem) source(params Params) (io.Reader, func(), error) {
	if r, ok := params.Reader(ParamBody); ok {
		return r, func() {}, nil
	}

	name, err := h.client.localPath(params.String(ParamFile))
	if err != nil {
		return nil, nil, err
	}
	f, err := h.client.fs.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
