package simples3

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

const (
	defaultRegion           = "us-east-1"
	defaultMaxRetries       = 3
	defaultBatchConcurrency = 25
	defaultPresignExpiry    = time.Hour
)

// Client runs simples3 commands against S3.
// It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// presigner signs GetObject requests for public links
	presigner s3api.Presigner

	// uploader drives single and multipart uploads through s3Client
	uploader *manager.Uploader

	// config holds the AWS configuration
	config aws.Config

	// httpClient follows presigned links for OpenItem
	httpClient *http.Client

	// fs is the local filesystem for downloads and file uploads
	fs billy.Filesystem

	// osFS is set when fs is the default OS filesystem rooted at "/"
	osFS bool

	logger    *slog.Logger
	cache     s3types.Cache
	encoder   s3types.KeyEncoder
	metrics   *metrics.Recorder
	sslVerify bool

	batchConcurrency int
	presignExpiry    time.Duration

	// mu protects handlers
	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

// New creates a client with the provided options.
// It loads AWS credentials using the default credential chain unless
// WithCredentials or WithAWSConfig is given.
//
// Example:
//
//	client, err := simples3.New(ctx,
//	    simples3.WithRegion("eu-west-1"),
//	    simples3.WithLogger(slog.Default()),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	if clientCfg.AccessKeyID != "" {
		cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			clientCfg.AccessKeyID,
			clientCfg.SecretAccessKey,
			clientCfg.SessionToken,
		))
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = clientCfg.CustomHTTPClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{Timeout: clientCfg.Timeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	c, err := newClient(s3Client, s3.NewPresignClient(s3Client), clientCfg)
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return c, nil
}

// NewWithClient creates a client around custom S3API and Presigner
// implementations. This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, presigner s3api.Presigner, opts ...s3types.Option) (*Client, error) {
	clientCfg := defaultConfig()
	for _, opt := range opts {
		opt(clientCfg)
	}

	c, err := newClient(s3Client, presigner, clientCfg)
	if err != nil {
		return nil, err
	}
	c.config = aws.Config{Region: clientCfg.Region}
	return c, nil
}

func defaultConfig() *s3types.ClientConfig {
	return &s3types.ClientConfig{
		MaxRetries:       defaultMaxRetries,
		SSLVerify:        true,
		BatchConcurrency: defaultBatchConcurrency,
		PresignExpiry:    defaultPresignExpiry,
	}
}

func newClient(api s3api.S3API, presigner s3api.Presigner, cfg *s3types.ClientConfig) (*Client, error) {
	c := &Client{
		s3Client:         api,
		presigner:        presigner,
		uploader:         manager.NewUploader(api),
		httpClient:       linkHTTPClient(cfg),
		fs:               cfg.Filesystem,
		logger:           cfg.Logger,
		cache:            cfg.Cache,
		encoder:          cfg.KeyEncoder,
		sslVerify:        cfg.SSLVerify,
		batchConcurrency: cfg.BatchConcurrency,
		presignExpiry:    cfg.PresignExpiry,
		handlers:         make(map[string]CommandHandler),
	}

	if c.fs == nil {
		c.fs = osfs.New("/")
		c.osFS = true
	}

	if cfg.Metrics != nil {
		rec, err := metrics.New(cfg.Metrics)
		if err != nil {
			return nil, errors.NewError("client initialization", err).WithMessage("register metrics")
		}
		c.metrics = rec
	}

	c.registerBuiltins()
	return c, nil
}

// linkHTTPClient builds the client OpenItem uses to follow presigned links.
func linkHTTPClient(cfg *s3types.ClientConfig) *http.Client {
	if cfg.CustomHTTPClient != nil {
		return cfg.CustomHTTPClient
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.SSLVerify {
		//nolint:gosec // explicitly requested through WithSSLVerify(false)
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Transport: transport, Timeout: cfg.Timeout}
}

// Region returns the region requests are signed for.
func (c *Client) Region() string {
	return c.config.Region
}

// HasCache reports whether a cache is configured.
func (c *Client) HasCache() bool {
	return c.cache != nil
}

// HasEncoder reports whether a key encoder is configured.
func (c *Client) HasEncoder() bool {
	return c.encoder != nil
}

// SSLVerify reports whether OpenItem verifies TLS certificates.
func (c *Client) SSLVerify() bool {
	return c.sslVerify
}

// Cache returns the configured cache, or nil.
func (c *Client) Cache() s3types.Cache {
	return c.cache
}

// Close releases the cache when it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// encodeKey maps a caller key to the stored key.
func (c *Client) encodeKey(key string) string {
	if c.encoder == nil || key == "" {
		return key
	}
	return c.encoder.Encode(key)
}
