package simples3

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

// maxPresignExpiry is the longest lifetime SigV4 accepts for a presigned URL.
const maxPresignExpiry = 7 * 24 * time.Hour

type getPublicItemLink struct {
	baseHandler
}

func (h *getPublicItemLink) Name() string { return CommandGetPublicItemLink }

func (h *getPublicItemLink) ValidateParams(params Params) bool {
	return h.required(params, ParamBucket, ParamKey)
}

func (h *getPublicItemLink) Handle(ctx context.Context, params Params) (any, error) {
	bucket := params.String(ParamBucket)
	key := params.String(ParamKey)

	expires, err := parseExpiry(params[ParamExpires], h.client.presignExpiry)
	if err != nil {
		h.warn(ctx, "invalid expiry", "bucket", bucket, "key", key, "error", err)
		return "", err
	}

	link, err := h.client.presignGetURL(ctx, bucket, key, expires)
	if err != nil {
		h.logError(ctx, "presign failed", err, "bucket", bucket, "key", key)
		return "", err
	}

	h.info(ctx, "public link obtained", "bucket", bucket, "key", key, "expires", expires)
	return link, nil
}

func (c *Client) presignGetURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(c.encodeKey(key)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", errors.FromAWS(CommandGetPublicItemLink, bucket, key, err)
	}
	return req.URL, nil
}

// parseExpiry reads a link lifetime. Accepted forms are a time.Duration,
// a number of seconds, a Go duration string ("90m") and a relative time
// string ("+1 hour", "+2 days"). A nil value yields def.
func parseExpiry(v any, def time.Duration) (time.Duration, error) {
	var (
		d   time.Duration
		err error
	)

	switch val := v.(type) {
	case nil:
		d = def
	case time.Duration:
		d = val
	case int:
		d, err = scaleExpiry(int64(val), time.Second)
	case int64:
		d, err = scaleExpiry(val, time.Second)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val != math.Trunc(val) {
			return 0, invalidParam(ParamExpires, v)
		}
		if math.Abs(val) > float64(maxPresignExpiry/time.Second) {
			return 0, expiryRangeError(v)
		}
		d = time.Duration(val) * time.Second
	case string:
		d, err = parseExpiryString(val)
		if err != nil && !errors.IsInvalidParams(err) {
			return 0, invalidParam(ParamExpires, v)
		}
	default:
		return 0, invalidParam(ParamExpires, v)
	}
	if err != nil {
		return 0, err
	}

	if d <= 0 || d > maxPresignExpiry {
		return 0, expiryRangeError(d)
	}
	return d, nil
}

// scaleExpiry returns n units, refusing counts whose product would not fit
// the allowed range.
func scaleExpiry(n int64, unit time.Duration) (time.Duration, error) {
	if limit := int64(maxPresignExpiry / unit); n > limit || n < -limit {
		return 0, expiryRangeError(fmt.Sprintf("%d x %s", n, unit))
	}
	return time.Duration(n) * unit, nil
}

func expiryRangeError(got any) error {
	return errors.NewError("params", errors.ErrInvalidInput).
		WithMessage(fmt.Sprintf("expires must be within (0, %s], got %v", maxPresignExpiry, got))
}

var expiryUnits = map[string]time.Duration{
	"second": time.Second,
	"sec":    time.Second,
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

func parseExpiryString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return scaleExpiry(n, time.Second)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	fields := strings.Fields(strings.TrimPrefix(s, "+"))
	if len(fields) != 2 {
		return 0, fmt.Errorf("unrecognised expiry %q", s)
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognised expiry %q", s)
	}
	unit, ok := expiryUnits[strings.TrimSuffix(strings.ToLower(fields[1]), "s")]
	if !ok {
		return 0, fmt.Errorf("unrecognised expiry unit %q", fields[1])
	}
	return scaleExpiry(n, unit)
}
