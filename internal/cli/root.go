// Package cli implements the simples3 command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/config"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// ClientFactory builds the client used by every command.
type ClientFactory func(ctx context.Context, opts ...s3types.Option) (*simples3.Client, error)

// App holds what the commands share once the configuration is loaded.
type App struct {
	newClient ClientFactory

	envFile  string
	cfg      config.Config
	zap      *zap.Logger
	logger   *slog.Logger
	registry *prometheus.Registry
	client   *simples3.Client
}

// NewRootCommand returns the simples3 command tree and the App its commands
// share. A nil factory uses simples3.New. Callers must Close the App once the
// command returns, whether it failed or not.
func NewRootCommand(factory ClientFactory) (*cobra.Command, *App) {
	if factory == nil {
		factory = simples3.New
	}
	app := &App{newClient: factory}

	root := &cobra.Command{
		Use:           "simples3",
		Short:         "Run simple S3 commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context(), false)
		},
	}
	root.PersistentFlags().StringVar(&app.envFile, "env-file", "", "load variables from this file instead of ./.env")

	root.AddCommand(
		newCopyCommand(app),
		newCopyBatchCommand(app),
		newMkdirCommand(app),
		newDownloadCommand(app),
		newGetCommand(app),
		newSizeCommand(app),
		newLinkCommand(app),
		newOpenCommand(app),
		newUploadCommand(app),
		newServeCommand(app),
	)
	return root, app
}

// setup loads the configuration and builds the client. With dataDirOnly the
// client filesystem is bound to the configured data directory.
func (a *App) setup(ctx context.Context, dataDirOnly bool) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.zap = newZap(cfg.Log.Level, cfg.Log.Format)
	a.logger = slogFor(a.zap)
	a.registry = prometheus.NewRegistry()

	c, err := cfg.OpenCache()
	if err != nil {
		return err
	}

	opts := append(cfg.Options(),
		simples3.WithLogger(a.logger),
		simples3.WithMetrics(a.registry),
	)
	if c != nil {
		opts = append(opts, simples3.WithCache(c))
	}
	if dataDirOnly {
		dir, err := filepath.Abs(cfg.DataDir)
		if err == nil {
			err = os.MkdirAll(dir, 0o755)
		}
		if err != nil {
			closeCache(c)
			return fmt.Errorf("prepare data dir %s: %w", cfg.DataDir, err)
		}
		opts = append(opts, simples3.WithFilesystem(osfs.New(dir, osfs.WithBoundOS())))
	}

	client, err := a.newClient(ctx, opts...)
	if err != nil {
		closeCache(c)
		return fmt.Errorf("create client: %w", err)
	}
	a.client = client
	return nil
}

// Close releases the client cache and flushes the logger. It is safe to call
// more than once and before setup ran.
func (a *App) Close() error {
	var err error
	if a.client != nil {
		err = a.client.Close()
		a.client = nil
	}
	if a.zap != nil {
		_ = a.zap.Sync()
		a.zap = nil
	}
	return err
}

func closeCache(c s3types.Cache) {
	if closer, ok := c.(io.Closer); ok {
		_ = closer.Close()
	}
}

// run executes a command and prints its result as JSON.
func (a *App) run(cmd *cobra.Command, name string, params simples3.Params) error {
	res, err := a.client.Execute(cmd.Context(), name, params)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// runRaw executes a command and writes its content result as-is.
func (a *App) runRaw(cmd *cobra.Command, name string, params simples3.Params) error {
	res, err := a.client.Execute(cmd.Context(), name, params)
	if err != nil {
		return err
	}

	var data []byte
	switch v := res.(type) {
	case []byte:
		data = v
	case *simples3.Item:
		data = v.Body
	default:
		return fmt.Errorf("%s returned %T, not content", name, res)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
