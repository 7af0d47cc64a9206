package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		errMsg string
	}{
		{"valid_simple", "my-bucket", ""},
		{"valid_with_numbers", "my-bucket123", ""},
		{"valid_with_dots", "my.bucket", ""},
		{"valid_min_length", "abc", ""},
		{"valid_max_length", strings.Repeat("a", 63), ""},

		{"empty", "", "bucket name cannot be empty"},
		{"too_short", "ab", "bucket name must be between 3 and 63 characters long"},
		{"too_long", strings.Repeat("a", 64), "bucket name must be between 3 and 63 characters long"},
		{"starts_with_hyphen", "-bucket", "bucket name cannot start or end with a hyphen or dot"},
		{"ends_with_dot", "bucket.", "bucket name cannot start or end with a hyphen or dot"},
		{"uppercase", "MyBucket", "bucket name can only contain lowercase letters, numbers, dots, and hyphens"},
		{"underscore", "my_bucket", "bucket name can only contain lowercase letters, numbers, dots, and hyphens"},
		{"starts_with_number", "1bucket", "bucket name cannot start with a number"},
		{"ip_address", "192.168.1.1", "bucket name cannot be formatted as an IP address"},
		{"localhost", "localhost", "bucket name cannot be a reserved word"},
		{"double_dots", "my..bucket", "bucket name cannot contain two adjacent periods or hyphens"},
		{"double_hyphens", "my--bucket", "bucket name cannot contain two adjacent periods or hyphens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		errMsg string
	}{
		{"simple", "my-file.txt", ""},
		{"nested", "folder/subfolder/file.txt", ""},
		{"folder", "folder/subfolder/", ""},
		{"unicode", "файл.txt", ""},
		{"spaces", "file with spaces.txt", ""},

		{"empty", "", "object key cannot be empty"},
		{"too_long", strings.Repeat("a", 1025), "object key cannot exceed 1024 characters"},
		{"dot_dot", "../secret.txt", "object key cannot contain path traversal sequences"},
		{"nested_dot_dot", "folder/../../secret.txt", "object key cannot contain path traversal sequences"},
		{"absolute", "/etc/passwd", "object key cannot contain path traversal sequences"},
		{"windows", "C:\\Windows\\System32", "object key cannot contain path traversal sequences"},
		{"null_byte", "file\x00name.txt", "object key cannot contain control characters"},
		{"newline", "file\nname.txt", "object key cannot contain control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		errMsg   string
	}{
		{"nil", nil, ""},
		{"valid", map[string]string{"author": "me", "note": "line1\nline2"}, ""},
		{"empty_key", map[string]string{"": "v"}, "metadata key cannot be empty"},
		{"long_key", map[string]string{strings.Repeat("k", 129): "v"}, "metadata key cannot exceed 128 characters"},
		{"reserved_prefix", map[string]string{"x-amz-meta": "v"}, "reserved prefix"},
		{"non_ascii_key", map[string]string{"ключ": "v"}, "printable ASCII"},
		{"long_value", map[string]string{"k": strings.Repeat("v", 2049)}, "metadata value cannot exceed 2048 characters"},
		{"control_value", map[string]string{"k": "a\x01b"}, "printable characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.metadata)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateContentType(t *testing.T) {
	for _, ct := range []string{"", "text/plain", "application/json; charset=utf-8", "application/vnd.api+json"} {
		assert.NoError(t, ValidateContentType(ct), ct)
	}
	for _, ct := range []string{"text", "/plain", "application/java-archive", "APPLICATION/X-SHOCKWAVE-FLASH"} {
		err := ValidateContentType(ct)
		assert.ErrorIs(t, err, errors.ErrInvalidInput, ct)
	}
}

func TestValidateACL(t *testing.T) {
	for _, acl := range []string{"", "private", "public-read", "bucket-owner-full-control"} {
		assert.NoError(t, ValidateACL(acl), acl)
	}

	err := ValidateACL("world-writable")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"world-writable"`)
}

func TestValidateLocalPath(t *testing.T) {
	for _, p := range []string{"", "a.txt", "out/copy.md", "a/../b.txt"} {
		assert.NoError(t, ValidateLocalPath(p), p)
	}

	for _, p := range []string{"/etc/shadow", "../a.txt", "out/../../a.txt", ".."} {
		err := ValidateLocalPath(p)
		require.Error(t, err, p)
		assert.ErrorIs(t, err, errors.ErrInvalidInput, p)
	}
}

func TestRequiredParams(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		keys    []string
		missing []string
	}{
		{"all present", map[string]any{"bucket": "b", "key": "k"}, []string{"bucket", "key"}, nil},
		{"nil params", nil, []string{"bucket", "key"}, []string{"bucket", "key"}},
		{"empty string", map[string]any{"bucket": "", "key": "k"}, []string{"bucket", "key"}, []string{"bucket"}},
		{"nil value", map[string]any{"bucket": "b", "key": nil}, []string{"bucket", "key"}, []string{"key"}},
		{"numbers count", map[string]any{"concurrency": 5}, []string{"concurrency"}, nil},
		{"no keys", map[string]any{}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, MissingParams(tt.params, tt.keys...))

			err := RequiredParams(tt.params, tt.keys...)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidParams)
			assert.Contains(t, err.Error(), strings.Join(tt.missing, ", "))
		})
	}
}

func TestSafeObjectName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		problems int
	}{
		{"plain", "report.pdf", 0},
		{"nested", "a/b/c.txt", 0},
		{"dot file", ".env", 1},
		{"max encoded length", strings.Repeat("a", 221), 0},
		{"too long", strings.Repeat("a", 222), 1},
		// each "/" encodes to three bytes
		{"too long once encoded", strings.Repeat("/", 74), 1},
		{"both", "." + strings.Repeat("b", 221), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SafeObjectNameProblems(tt.input), tt.problems)

			err := ValidateSafeObjectName(tt.input)
			if tt.problems == 0 {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
			}
		})
	}
}
