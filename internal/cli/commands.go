package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/server"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

func newCopyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "copy SOURCE_BUCKET SOURCE TARGET_BUCKET TARGET",
		Short: "Copy an object, creating the target bucket when needed",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, simples3.CommandCopyItem, simples3.Params{
				simples3.ParamSourceBucket: args[0],
				simples3.ParamSource:       args[1],
				simples3.ParamTargetBucket: args[2],
				simples3.ParamTarget:       args[3],
			})
		},
	}
}

func newCopyBatchCommand(app *App) *cobra.Command {
	var (
		targetBucket string
		targets      []string
		concurrency  int
	)
	cmd := &cobra.Command{
		Use:   "copy-batch SOURCE_BUCKET KEY...",
		Short: "Copy many objects concurrently",
		Long: `Copy many objects concurrently. Targets given with --as rename the keys
in order; keys without one keep their name.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := simples3.Params{
				simples3.ParamSourceBucket: args[0],
				simples3.ParamFiles:        s3types.BatchFiles{Source: args[1:], Target: targets},
			}
			if targetBucket != "" {
				params[simples3.ParamTargetBucket] = targetBucket
			}
			if concurrency > 0 {
				params[simples3.ParamConcurrency] = concurrency
			}
			return app.run(cmd, simples3.CommandCopyInBatch, params)
		},
	}
	cmd.Flags().StringVar(&targetBucket, "target-bucket", "", "bucket to copy into (default: SOURCE_BUCKET)")
	cmd.Flags().StringSliceVar(&targets, "as", nil, "target keys, positional with KEY")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "copies in flight (default: S3_BATCH_CONCURRENCY)")
	return cmd
}

func newMkdirCommand(app *App) *cobra.Command {
	var acl string
	cmd := &cobra.Command{
		Use:   "mkdir BUCKET KEY",
		Short: "Create a folder marker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, simples3.CommandCreateFolder, simples3.Params{
				simples3.ParamBucket: args[0],
				simples3.ParamKey:    args[1],
				simples3.ParamACL:    acl,
			})
		},
	}
	cmd.Flags().StringVar(&acl, "acl", string(s3types.ACLPublicRead), "canned ACL of the folder marker")
	return cmd
}

func newDownloadCommand(app *App) *cobra.Command {
	var saveAs string
	cmd := &cobra.Command{
		Use:   "download BUCKET KEY",
		Short: "Download an object to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, simples3.CommandDownloadItem, simples3.Params{
				simples3.ParamBucket: args[0],
				simples3.ParamKey:    args[1],
				simples3.ParamSaveAs: saveAs,
			})
		},
	}
	cmd.Flags().StringVarP(&saveAs, "output", "o", "", "local path (default: KEY)")
	return cmd
}

func newGetCommand(app *App) *cobra.Command {
	var meta bool
	cmd := &cobra.Command{
		Use:   "get BUCKET KEY",
		Short: "Print an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := simples3.Params{
				simples3.ParamBucket: args[0],
				simples3.ParamKey:    args[1],
			}
			if meta {
				return app.run(cmd, simples3.CommandGetItem, params)
			}
			return app.runRaw(cmd, simples3.CommandGetItem, params)
		},
	}
	cmd.Flags().BoolVar(&meta, "json", false, "print the item as JSON instead of its content")
	return cmd
}

func newSizeCommand(app *App) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "size BUCKET",
		Short: "Print the total size of a bucket in bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, simples3.CommandGetBucketSize, simples3.Params{
				simples3.ParamBucket: args[0],
				simples3.ParamPrefix: prefix,
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only count keys under this prefix")
	return cmd
}

func newLinkCommand(app *App) *cobra.Command {
	var expires string
	cmd := &cobra.Command{
		Use:   "link BUCKET KEY",
		Short: "Print a presigned download link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := simples3.Params{
				simples3.ParamBucket: args[0],
				simples3.ParamKey:    args[1],
			}
			if expires != "" {
				params[simples3.ParamExpires] = expires
			}
			return app.run(cmd, simples3.CommandGetPublicItemLink, params)
		},
	}
	cmd.Flags().StringVar(&expires, "expires", "", `link lifetime, e.g. "+2 hours" or "90m" (default 1h)`)
	return cmd
}

func newOpenCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open BUCKET KEY",
		Short: "Print an object fetched through its presigned link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runRaw(cmd, simples3.CommandOpenItem, simples3.Params{
				simples3.ParamBucket: args[0],
				simples3.ParamKey:    args[1],
			})
		},
	}
}

func newUploadCommand(app *App) *cobra.Command {
	var (
		file        string
		contentType string
		acl         string
	)
	cmd := &cobra.Command{
		Use:   "upload BUCKET KEY",
		Short: "Upload a local file, or stdin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := simples3.Params{
				simples3.ParamBucket:      args[0],
				simples3.ParamKey:         args[1],
				simples3.ParamContentType: contentType,
				simples3.ParamACL:         acl,
			}
			if file != "" {
				params[simples3.ParamFile] = file
			} else {
				params[simples3.ParamBody] = cmd.InOrStdin()
			}
			return app.run(cmd, simples3.CommandUploadItem, params)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "local file to upload (default: stdin)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type (default: detected)")
	cmd.Flags().StringVar(&acl, "acl", "", "canned ACL")
	return cmd
}

func newServeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve commands over HTTP",
		Long: `Serve commands over HTTP. Local paths in save_as and file are resolved
inside HTTP_DATA_DIR and may not leave it.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context(), true)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(app.cfg.HTTPAddr, app.client, app.registry, app.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			app.logger.InfoContext(ctx, "listening", "addr", app.cfg.HTTPAddr, "data_dir", app.cfg.DataDir)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
