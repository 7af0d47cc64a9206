// Package keyenc maps object keys to path-safe forms.
//
// Both encoders work segment by segment so "/" separators, and with them
// prefixes and folder markers, survive encoding.
package keyenc

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

const separator = "/"

var (
	_ s3types.KeyEncoder = Hex{}
	_ s3types.KeyEncoder = URL{}
)

// Hex stores every key segment as lowercase hexadecimal.
type Hex struct{}

// Encode implements s3types.KeyEncoder.
func (Hex) Encode(key string) string {
	return mapSegments(key, func(s string) (string, error) {
		return hex.EncodeToString([]byte(s)), nil
	}, nil)
}

// Decode implements s3types.KeyEncoder.
func (Hex) Decode(key string) (string, error) {
	var err error
	out := mapSegments(key, func(s string) (string, error) {
		b, decErr := hex.DecodeString(s)
		if decErr != nil {
			return "", fmt.Errorf("decode hex segment %q: %w", s, decErr)
		}
		return string(b), nil
	}, &err)
	return out, err
}

// URL escapes every key segment as a URL path segment.
type URL struct{}

// Encode implements s3types.KeyEncoder.
func (URL) Encode(key string) string {
	return mapSegments(key, func(s string) (string, error) {
		return url.PathEscape(s), nil
	}, nil)
}

// Decode implements s3types.KeyEncoder.
func (URL) Decode(key string) (string, error) {
	var err error
	out := mapSegments(key, url.PathUnescape, &err)
	return out, err
}

// New returns the encoder registered under name: "hex", "url", or ""/"none" for no encoder.
func New(name string) (s3types.KeyEncoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "hex":
		return Hex{}, nil
	case "url":
		return URL{}, nil
	default:
		return nil, fmt.Errorf("unknown key encoder %q", name)
	}
}

// mapSegments applies fn to every non-empty segment of key. The first error
// is stored in errp when errp is not nil.
func mapSegments(key string, fn func(string) (string, error), errp *error) string {
	segments := strings.Split(key, separator)
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		out, err := fn(seg)
		if err != nil {
			if errp != nil && *errp == nil {
				*errp = err
			}
			continue
		}
		segments[i] = out
	}
	return strings.Join(segments, separator)
}
