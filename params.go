package simples3

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// Param names understood by the built-in commands.
const (
	ParamBucket       = "bucket"
	ParamKey          = "key"
	ParamSourceBucket = "source_bucket"
	ParamSource       = "source"
	ParamTargetBucket = "target_bucket"
	ParamTarget       = "target"
	ParamSaveAs       = "save_as"
	ParamExpires      = "expires"
	ParamPrefix       = "prefix"
	ParamFiles        = "files"
	ParamConcurrency  = "concurrency"
	ParamACL          = "acl"
	ParamBody         = "body"
	ParamFile         = "file"
	ParamContentType  = "content_type"
	ParamMetadata     = "metadata"
)

// Params is the input of a command. Values may come straight from Go code or
// from decoded JSON, so accessors accept both native types and their JSON
// shapes (float64 numbers, []any lists, map[string]any objects).
type Params map[string]any

// String returns the value under key as a string, or "" when absent.
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether key is present with a non-empty value.
func (p Params) Has(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

// Int returns the value under key as an int, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	switch v := p[key].(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, invalidParam(key, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, invalidParam(key, v)
		}
		return int(n), nil
	case string:
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, invalidParam(key, v)
		}
		return n, nil
	default:
		return 0, invalidParam(key, v)
	}
}

// Files returns the batch file lists stored under ParamFiles.
func (p Params) Files() (s3types.BatchFiles, error) {
	switch v := p[ParamFiles].(type) {
	case nil:
		return s3types.BatchFiles{}, nil
	case s3types.BatchFiles:
		return v, nil
	case *s3types.BatchFiles:
		if v == nil {
			return s3types.BatchFiles{}, nil
		}
		return *v, nil
	case map[string][]string:
		return s3types.BatchFiles{Source: v[ParamSource], Target: v[ParamTarget]}, nil
	case map[string]any:
		source, err := stringList(v[ParamSource])
		if err != nil {
			return s3types.BatchFiles{}, invalidParam(ParamFiles+"."+ParamSource, v[ParamSource])
		}
		target, err := stringList(v[ParamTarget])
		if err != nil {
			return s3types.BatchFiles{}, invalidParam(ParamFiles+"."+ParamTarget, v[ParamTarget])
		}
		return s3types.BatchFiles{Source: source, Target: target}, nil
	default:
		return s3types.BatchFiles{}, invalidParam(ParamFiles, v)
	}
}

// StringMap returns the value under key as a string map, or nil when absent.
func (p Params) StringMap(key string) (map[string]string, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			s, ok := val.(string)
			if !ok {
				return nil, invalidParam(key+"."+k, val)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, invalidParam(key, v)
	}
}

// Reader returns the value under key as a reader over its content.
// Strings and byte slices are wrapped; readers are returned as-is.
func (p Params) Reader(key string) (io.Reader, bool) {
	switch v := p[key].(type) {
	case []byte:
		return bytes.NewReader(v), true
	case string:
		return strings.NewReader(v), true
	case io.Reader:
		return v, true
	default:
		return nil, false
	}
}

func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d is %T, not a string", i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported list type %T", v)
	}
}

func invalidParam(key string, v any) error {
	return errors.NewError("params", errors.ErrInvalidInput).
		WithMessage(fmt.Sprintf("param %q has unsupported value %v (%T)", key, v, v))
}
