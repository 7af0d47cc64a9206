// Package s3types provides shared type definitions for the simples3 module.
package s3types

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// ObjectACL represents the canned access control list applied to written objects.
type ObjectACL string

// Predefined object ACLs
const (
	// ACLPrivate grants private access
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access (default for folders)
	ACLPublicRead ObjectACL = "public-read"

	// ACLPublicReadWrite grants public read and write access
	ACLPublicReadWrite ObjectACL = "public-read-write"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLOwnerRead grants bucket owner read access
	ACLOwnerRead ObjectACL = "bucket-owner-read"

	// ACLOwnerFullControl grants bucket owner full control
	ACLOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// Item is an object as seen by the command handlers and the cache.
// A nil Body marks a metadata-only entry, as recorded after copies and
// folder creation.
type Item struct {
	Bucket        string            `json:"bucket"`
	Key           string            `json:"key"`
	Body          []byte            `json:"body"`
	ContentType   string            `json:"content_type,omitempty"`
	ContentLength int64             `json:"content_length"`
	ETag          string            `json:"etag,omitempty"`
	LastModified  time.Time         `json:"last_modified,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// HasBody reports whether the item carries object content.
func (i *Item) HasBody() bool {
	return i != nil && i.Body != nil
}

// BatchFiles lists the keys copied by CopyInBatch. Target is optional and
// positional: Target[i] renames Source[i], missing entries keep the source key.
type BatchFiles struct {
	Source []string `json:"source"`
	Target []string `json:"target,omitempty"`
}

// Cache stores items by bucket and key.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached item and true, or nil and false on a miss
	Get(bucket, key string) (*Item, bool)

	// Set stores the item under bucket and key
	Set(bucket, key string, item *Item) error

	// Delete removes the item stored under bucket and key
	Delete(bucket, key string) error
}

// KeyEncoder maps caller keys to the keys stored in S3.
// Encoders must keep "/" separators so prefixes stay meaningful.
type KeyEncoder interface {
	Encode(key string) string
	Decode(key string) (string, error)
}

// ClientConfig holds configuration for the simples3 client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client

	// Static credentials; when AccessKeyID is empty the default chain is used
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	Logger     *slog.Logger
	Cache      Cache
	KeyEncoder KeyEncoder
	Filesystem billy.Filesystem // local side of DownloadItem and UploadItem
	Metrics    prometheus.Registerer

	// SSLVerify controls TLS verification when OpenItem follows a presigned link
	SSLVerify bool

	BatchConcurrency int
	PresignExpiry    time.Duration
}

// Option is a functional option for configuring the simples3 client.
type Option func(*ClientConfig)
