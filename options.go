package simples3

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of attempts the SDK makes per request.
// Default is 3. Zero keeps the SDK default.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP timeout for SDK calls and for OpenItem downloads.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig provides a ready AWS configuration instead of loading the default chain.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCredentials sets static credentials instead of the default credential chain.
func WithCredentials(accessKeyID, secretAccessKey, sessionToken string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
		c.SessionToken = sessionToken
	}
}

// WithCustomHTTPClient sets the HTTP client used by the SDK and by OpenItem.
// It takes precedence over WithTimeout and WithSSLVerify.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithLogger sets the logger used by command handlers.
// Without it the client logs nothing.
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithCache sets the cache written after successful copies, folder creation
// and uploads, and read by GetItem.
func WithCache(cache s3types.Cache) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Cache = cache
	}
}

// WithKeyEncoder sets the encoder applied to every object key and prefix
// before it reaches S3.
func WithKeyEncoder(encoder s3types.KeyEncoder) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.KeyEncoder = encoder
	}
}

// WithFilesystem sets the local filesystem used by DownloadItem and UploadItem.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem billy.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithMetrics registers command metrics on reg.
func WithMetrics(reg prometheus.Registerer) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Metrics = reg
	}
}

// WithSSLVerify toggles TLS certificate verification when OpenItem follows a
// presigned link. Default is true.
func WithSSLVerify(verify bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.SSLVerify = verify
	}
}

// WithBatchConcurrency sets the default number of copies CopyInBatch runs at once.
// Default is 25. The "concurrency" param overrides it per call.
func WithBatchConcurrency(concurrency int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if concurrency > 0 {
			c.BatchConcurrency = concurrency
		}
	}
}

// WithPresignExpiry sets the default lifetime of presigned links. Default is one hour.
func WithPresignExpiry(expiry time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if expiry > 0 {
			c.PresignExpiry = expiry
		}
	}
}
