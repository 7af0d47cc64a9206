// Package validation checks command params before they reach the SDK.
// This covers presence of required params, bucket names, object keys and the
// optional values handlers forward to S3 (ACL, content type, metadata).
package validation

import (
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
)

const (
	minBucketLength = 3
	maxBucketLength = 63
	maxKeyLength    = 1024
	maxMetaKey      = 128
	maxMetaValue    = 2048
)

// bucketRule is one DNS naming rule for bucket names.
type bucketRule struct {
	broken  func(bucket string) bool
	message string
}

// Order matters: later rules assume earlier ones passed.
var bucketRules = []bucketRule{
	{
		broken:  func(b string) bool { return b == "" },
		message: "bucket name cannot be empty",
	},
	{
		broken:  func(b string) bool { return len(b) < minBucketLength || len(b) > maxBucketLength },
		message: "bucket name must be between 3 and 63 characters long",
	},
	{
		broken:  func(b string) bool { return strings.IndexFunc(b, invalidBucketRune) >= 0 },
		message: "bucket name can only contain lowercase letters, numbers, dots, and hyphens",
	},
	{
		broken: func(b string) bool {
			return strings.ContainsAny(b[:1], ".-") || strings.ContainsAny(b[len(b)-1:], ".-")
		},
		message: "bucket name cannot start or end with a hyphen or dot",
	},
	{
		broken:  func(b string) bool { return net.ParseIP(b) != nil },
		message: "bucket name cannot be formatted as an IP address",
	},
	{
		broken:  func(b string) bool { return b[0] >= '0' && b[0] <= '9' },
		message: "bucket name cannot start with a number",
	},
	{
		broken:  func(b string) bool { return strings.Contains(b, "..") || strings.Contains(b, "--") },
		message: "bucket name cannot contain two adjacent periods or hyphens",
	},
	{
		broken:  func(b string) bool { return b == "localhost" },
		message: "bucket name cannot be a reserved word",
	},
}

var mimePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-+.]*\/[a-zA-Z0-9][a-zA-Z0-9\-+.]*(\s*;.*)?$`)

// blockedContentTypes are refused on upload.
var blockedContentTypes = map[string]bool{
	"application/x-shockwave-flash": true,
	"application/java-archive":      true,
	"application/x-java-archive":    true,
}

var cannedACLs = map[string]bool{
	"private":                   true,
	"public-read":               true,
	"public-read-write":         true,
	"authenticated-read":        true,
	"aws-exec-read":             true,
	"bucket-owner-read":         true,
	"bucket-owner-full-control": true,
}

// ValidateBucketName validates that a bucket name is DNS-compliant according to AWS S3 rules.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	for _, rule := range bucketRules {
		if rule.broken(bucket) {
			return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage(rule.message)
		}
	}
	return nil
}

// ValidateObjectKey rejects empty keys, keys longer than 1024 bytes, path
// traversal and control characters.
func ValidateObjectKey(key string) error {
	var msg string
	switch {
	case key == "":
		msg = "object key cannot be empty"
	case hasPathTraversal(key):
		msg = "object key cannot contain path traversal sequences"
	case len(key) > maxKeyLength:
		msg = "object key cannot exceed 1024 characters"
	case strings.IndexFunc(key, unicode.IsControl) >= 0:
		msg = "object key cannot contain control characters"
	default:
		return nil
	}

	return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
		WithKey(key).
		WithMessage(msg)
}

// ValidateMetadata validates user metadata keys and values according to S3 rules.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if msg := metadataKeyProblem(key); msg != "" {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).WithMessage(msg)
		}
		if msg := metadataValueProblem(value); msg != "" {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).WithMessage(msg)
		}
	}
	return nil
}

// ValidateContentType accepts an empty value or a well-formed MIME type that is not blocked.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return nil
	}

	if !mimePattern.MatchString(contentType) {
		return errors.NewError("validateContentType", errors.ErrInvalidInput).
			WithMessage("content type must be a valid MIME type")
	}

	base := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if blockedContentTypes[base] {
		return errors.NewError("validateContentType", errors.ErrInvalidInput).
			WithMessage("content type is not allowed for security reasons")
	}

	return nil
}

// ValidateACL accepts an empty value or one of the S3 canned ACLs.
func ValidateACL(acl string) error {
	if acl == "" || cannedACLs[acl] {
		return nil
	}
	return errors.NewError("validateACL", errors.ErrInvalidInput).
		WithMessage(fmt.Sprintf("unsupported canned ACL %q", acl))
}

// ValidateLocalPath accepts an empty value or a relative path that stays
// below the directory it is resolved against.
func ValidateLocalPath(p string) error {
	if p == "" || filepath.IsLocal(p) {
		return nil
	}
	return errors.NewError("validateLocalPath", errors.ErrInvalidInput).
		WithMessage(fmt.Sprintf("path %q must be relative and stay inside the data directory", p))
}

func invalidBucketRune(r rune) bool {
	return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '.' && r != '-'
}

func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows drive letters
	return len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '/' || cleaned[2] == '\\')
}

func metadataKeyProblem(key string) string {
	switch {
	case key == "":
		return "metadata key cannot be empty"
	case len(key) > maxMetaKey:
		return "metadata key cannot exceed 128 characters"
	}

	lower := strings.ToLower(key)
	for _, prefix := range []string{"aws:", "x-amz-", "x-amz:"} {
		if strings.HasPrefix(lower, prefix) {
			return "metadata key cannot start with reserved prefix: " + prefix
		}
	}

	for _, r := range key {
		if r < 32 || r > 126 {
			return "metadata key can only contain printable ASCII characters"
		}
	}
	return ""
}

func metadataValueProblem(value string) string {
	if len(value) > maxMetaValue {
		return "metadata value cannot exceed 2048 characters"
	}
	for _, r := range value {
		if !unicode.IsPrint(r) && r != '\n' && r != '\t' {
			return "metadata value can only contain printable characters"
		}
	}
	return ""
}
