package simples3

import (
	"context"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

type copyInBatch struct {
	baseHandler
}

func (h *copyInBatch) Name() string { return CommandCopyInBatch }

func (h *copyInBatch) ValidateParams(params Params) bool {
	if !h.required(params, ParamSourceBucket) {
		return false
	}
	files, err := params.Files()
	return err == nil && len(files.Source) > 0
}

func (h *copyInBatch) Handle(ctx context.Context, params Params) (any, error) {
	sourceBucket := params.String(ParamSourceBucket)
	targetBucket := sourceBucket
	if params.Has(ParamTargetBucket) {
		targetBucket = params.String(ParamTargetBucket)
		if err := h.client.CreateBucketIfNotExists(ctx, targetBucket); err != nil {
			h.logError(ctx, "failed to ensure target bucket", err, "bucket", targetBucket)
			return false, err
		}
	}

	files, err := params.Files()
	if err != nil {
		return false, err
	}
	concurrency, err := params.Int(ParamConcurrency, h.client.batchConcurrency)
	if err != nil {
		return false, err
	}
	if concurrency <= 0 {
		concurrency = h.client.batchConcurrency
	}

	commands := make([]pool.Command, 0, len(files.Source))
	for i, source := range files.Source {
		target := batchTarget(files, i)
		commands = append(commands, pool.Command{
			Key: target,
			Exec: func(ctx context.Context) error {
				return h.client.copyObject(ctx, sourceBucket, source, targetBucket, target)
			},
		})
	}

	err = pool.Run(ctx, commands, pool.Config{
		Concurrency: concurrency,
		Before: func(key string) {
			h.debug(ctx, "about to copy", "bucket", targetBucket, "key", key)
		},
		Fulfilled: func(key string) {
			h.client.metrics.BatchItem(metrics.OutcomeSuccess)
			h.debug(ctx, "completed copy", "bucket", targetBucket, "key", key)
			h.remember(ctx, targetBucket, key, &s3types.Item{Bucket: targetBucket, Key: key})
		},
		Rejected: func(key string, err error) {
			h.client.metrics.BatchItem(metrics.OutcomeFailure)
			h.logError(ctx, "copy failed", err, "bucket", targetBucket, "key", key)
		},
	})
	if err != nil {
		h.warn(ctx, "batch copy finished with errors",
			"source_bucket", sourceBucket, "target_bucket", targetBucket, "items", len(commands))
		return false, errors.NewBucketError(CommandCopyInBatch, targetBucket,
			fmt.Errorf("%w: %w", errors.ErrBatchFailed, err))
	}

	h.info(ctx, "batch copy succeeded",
		"source_bucket", sourceBucket, "target_bucket", targetBucket, "items", len(commands))
	return true, nil
}

// batchTarget returns the target key of the i-th source file.
func batchTarget(files s3types.BatchFiles, i int) string {
	if i < len(files.Target) && files.Target[i] != "" {
		return files.Target[i]
	}
	return files.Source[i]
}
