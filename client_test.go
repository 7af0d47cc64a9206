package simples3

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/cache"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/keyenc"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

func newTestClient(t *testing.T, api *testutil.MockS3Client, opts ...s3types.Option) *Client {
	t.Helper()
	if api == nil {
		api = &testutil.MockS3Client{}
	}
	client, err := NewWithClient(api, &testutil.MockPresigner{}, opts...)
	require.NoError(t, err)
	return client
}

// TestClient_New tests the New() constructor against a static AWS config.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name       string
		opts       []s3types.Option
		wantRegion string
	}{
		{
			name:       "region from aws config",
			opts:       nil,
			wantRegion: "eu-central-1",
		},
		{
			name:       "region option wins",
			opts:       []s3types.Option{WithRegion("us-west-2")},
			wantRegion: "us-west-2",
		},
		{
			name: "endpoint credentials and timeout",
			opts: []s3types.Option{
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
				WithCredentials("test", "test", ""),
				WithTimeout(5 * time.Second),
				WithMaxRetries(5),
			},
			wantRegion: "eu-central-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			awsCfg := aws.Config{Region: "eu-central-1"}
			opts := append([]s3types.Option{WithAWSConfig(&awsCfg)}, tt.opts...)

			client, err := New(context.Background(), opts...)
			require.NoError(t, err)
			require.NotNil(t, client)

			assert.Equal(t, tt.wantRegion, client.Region())
			assert.IsType(t, &s3.Client{}, client.s3Client)
			assert.IsType(t, &s3.PresignClient{}, client.presigner)
			assert.NotNil(t, client.uploader)
		})
	}
}

func TestClient_New_DefaultRegion(t *testing.T) {
	client, err := New(context.Background(), WithAWSConfig(&aws.Config{}))
	require.NoError(t, err)
	assert.Equal(t, defaultRegion, client.Region())
}

func TestNewWithClient_Defaults(t *testing.T) {
	client := newTestClient(t, nil)

	assert.False(t, client.HasCache())
	assert.False(t, client.HasEncoder())
	assert.True(t, client.SSLVerify())
	assert.Nil(t, client.Cache())
	assert.True(t, client.osFS)
	assert.Equal(t, defaultBatchConcurrency, client.batchConcurrency)
	assert.Equal(t, defaultPresignExpiry, client.presignExpiry)
	assert.NoError(t, client.Close())

	assert.Equal(t, []string{
		CommandCopyInBatch,
		CommandCopyItem,
		CommandCreateFolder,
		CommandDownloadItem,
		CommandGetBucketSize,
		CommandGetItem,
		CommandGetPublicItemLink,
		CommandOpenItem,
		CommandUploadItem,
	}, client.Commands())
}

func TestNewWithClient_Options(t *testing.T) {
	mem := cache.NewMemory(time.Minute, 10)
	httpClient := &http.Client{Timeout: time.Second}

	client := newTestClient(t, nil,
		WithCache(mem),
		WithKeyEncoder(keyenc.Hex{}),
		WithSSLVerify(false),
		WithCustomHTTPClient(httpClient),
		WithBatchConcurrency(4),
		WithPresignExpiry(10*time.Minute),
	)

	assert.True(t, client.HasCache())
	assert.Same(t, mem, client.Cache())
	assert.True(t, client.HasEncoder())
	assert.False(t, client.SSLVerify())
	assert.Same(t, httpClient, client.httpClient)
	assert.Equal(t, 4, client.batchConcurrency)
	assert.Equal(t, 10*time.Minute, client.presignExpiry)
	assert.Equal(t, "646972/78", client.encodeKey("dir/x"))
}

func TestLinkHTTPClient(t *testing.T) {
	insecure := linkHTTPClient(&s3types.ClientConfig{SSLVerify: false})
	transport, ok := insecure.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)

	secure := linkHTTPClient(&s3types.ClientConfig{SSLVerify: true, Timeout: time.Second})
	transport, ok = secure.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, time.Second, secure.Timeout)
}

type echoHandler struct{}

func (echoHandler) Name() string { return "Echo" }

func (echoHandler) ValidateParams(params Params) bool { return params.Has("msg") }

func (echoHandler) Handle(_ context.Context, params Params) (any, error) {
	return params.String("msg"), nil
}

func TestClient_Register(t *testing.T) {
	client := newTestClient(t, nil)

	require.NoError(t, client.Register(echoHandler{}))
	assert.Contains(t, client.Commands(), "Echo")

	err := client.Register(echoHandler{})
	assert.ErrorIs(t, err, errors.ErrCommandExists)

	res, err := client.Execute(context.Background(), "Echo", Params{"msg": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res)
}

func TestBuiltinHandlers_ValidateParams(t *testing.T) {
	copyParams := func(drop string) Params {
		p := Params{
			ParamSourceBucket: "source",
			ParamSource:       "a.txt",
			ParamTargetBucket: "target",
			ParamTarget:       "b.txt",
		}
		delete(p, drop)
		return p
	}

	tests := []struct {
		name    string
		command string
		params  Params
		want    bool
	}{
		{"copy complete", CommandCopyItem, copyParams(""), true},
		{"copy without source_bucket", CommandCopyItem, copyParams(ParamSourceBucket), false},
		{"copy without source", CommandCopyItem, copyParams(ParamSource), false},
		{"copy without target_bucket", CommandCopyItem, copyParams(ParamTargetBucket), false},
		{"copy without target", CommandCopyItem, copyParams(ParamTarget), false},

		{"batch complete", CommandCopyInBatch, Params{
			ParamSourceBucket: "source",
			ParamFiles:        map[string]any{ParamSource: []any{"a.txt"}},
		}, true},
		{"batch without source_bucket", CommandCopyInBatch, Params{
			ParamFiles: map[string]any{ParamSource: []any{"a.txt"}},
		}, false},
		{"batch source not a list", CommandCopyInBatch, Params{
			ParamSourceBucket: "source",
			ParamFiles:        map[string]any{ParamSource: "a.txt"},
		}, false},
		{"batch source with non-string item", CommandCopyInBatch, Params{
			ParamSourceBucket: "source",
			ParamFiles:        map[string]any{ParamSource: []any{"a.txt", 7}},
		}, false},
		{"batch files not a map", CommandCopyInBatch, Params{
			ParamSourceBucket: "source",
			ParamFiles:        "a.txt",
		}, false},

		{"folder complete", CommandCreateFolder, Params{ParamBucket: "b", ParamKey: "dir"}, true},
		{"folder without key", CommandCreateFolder, Params{ParamBucket: "b"}, false},
		{"folder without bucket", CommandCreateFolder, Params{ParamKey: "dir"}, false},

		{"download complete", CommandDownloadItem, Params{ParamBucket: "b", ParamKey: "k"}, true},
		{"download without key", CommandDownloadItem, Params{ParamBucket: "b", ParamSaveAs: "out"}, false},

		{"size complete", CommandGetBucketSize, Params{ParamBucket: "b"}, true},
		{"size without bucket", CommandGetBucketSize, Params{ParamPrefix: "logs/"}, false},

		{"get complete", CommandGetItem, Params{ParamBucket: "b", ParamKey: "k"}, true},
		{"get without key", CommandGetItem, Params{ParamBucket: "b"}, false},

		{"link complete", CommandGetPublicItemLink, Params{ParamBucket: "b", ParamKey: "k"}, true},
		{"link without key", CommandGetPublicItemLink, Params{ParamBucket: "b", ParamExpires: "+1 hour"}, false},

		{"open complete", CommandOpenItem, Params{ParamBucket: "b", ParamKey: "k"}, true},
		{"open without bucket", CommandOpenItem, Params{ParamKey: "k"}, false},

		{"upload with body", CommandUploadItem, Params{ParamBucket: "b", ParamKey: "k", ParamBody: "x"}, true},
		{"upload with file", CommandUploadItem, Params{ParamBucket: "b", ParamKey: "k", ParamFile: "x.txt"}, true},
		{"upload without body or file", CommandUploadItem, Params{ParamBucket: "b", ParamKey: "k"}, false},
		{"upload without key", CommandUploadItem, Params{ParamBucket: "b", ParamBody: "x"}, false},
	}

	client := newTestClient(t, &testutil.MockS3Client{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := client.handlers[tt.command]
			require.True(t, ok)
			assert.Equal(t, tt.want, h.ValidateParams(tt.params))

			if !tt.want {
				_, err := client.Execute(context.Background(), tt.command, tt.params)
				assert.ErrorIs(t, err, errors.ErrInvalidParams)
			}
		})
	}
}

func TestClient_Execute(t *testing.T) {
	tests := []struct {
		name    string
		command string
		params  Params
		wantErr error
	}{
		{
			name:    "unknown command",
			command: "Nope",
			params:  Params{},
			wantErr: errors.ErrUnknownCommand,
		},
		{
			name:    "nil params fail validation",
			command: CommandGetItem,
			params:  nil,
			wantErr: errors.ErrInvalidParams,
		},
		{
			name:    "empty value fails validation",
			command: CommandGetItem,
			params:  Params{ParamBucket: "b", ParamKey: ""},
			wantErr: errors.ErrInvalidParams,
		},
		{
			name:    "batch without source files",
			command: CommandCopyInBatch,
			params:  Params{ParamSourceBucket: "b", ParamFiles: map[string]any{}},
			wantErr: errors.ErrInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, nil)

			res, err := client.Execute(context.Background(), tt.command, tt.params)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_Execute_LogsExecution(t *testing.T) {
	rec := testutil.NewLogRecorder()
	client := newTestClient(t, nil, WithLogger(rec.Logger()))

	ok, err := client.CreateFolder(context.Background(), Params{ParamBucket: "bucket", ParamKey: "docs"})
	require.NoError(t, err)
	assert.True(t, ok)

	entry, found := rec.Find("folder created")
	require.True(t, found)
	assert.Equal(t, CommandCreateFolder, entry.Attrs["command"])
	assert.NotEmpty(t, entry.Attrs["execution_id"])
	assert.Equal(t, "docs/", entry.Attrs["key"])

	_, err = client.GetItem(context.Background(), Params{ParamBucket: "bucket"})
	require.Error(t, err)
	entry, found = rec.Find("invalid params")
	require.True(t, found)
	assert.Equal(t, CommandGetItem, entry.Attrs["command"])
}

func TestClient_Execute_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := newTestClient(t, nil, WithMetrics(reg))

	_, err := client.CreateFolder(context.Background(), Params{ParamBucket: "bucket", ParamKey: "a"})
	require.NoError(t, err)
	_, err = client.CreateFolder(context.Background(), Params{ParamBucket: "bucket"})
	require.Error(t, err)

	assert.Equal(t, 1.0, counterValue(t, reg, "simples3_commands_total",
		map[string]string{"command": CommandCreateFolder, "outcome": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "simples3_commands_total",
		map[string]string{"command": CommandCreateFolder, "outcome": "invalid"}))

	// A second client on the same registry reuses the collectors.
	_, err = NewWithClient(&testutil.MockS3Client{}, &testutil.MockPresigner{}, WithMetrics(reg))
	assert.NoError(t, err)
}

// counterValue returns the value of the counter name with exactly labels.
func counterValue(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := g.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}
