// Package simples3 runs named S3 commands over the AWS SDK v2.
//
// Each command validates a parameter map, calls the SDK, logs the outcome and,
// when a cache is configured, records what it touched. Commands are run by
// name through Client.Execute or through the typed wrappers:
//
//	client, err := simples3.New(ctx,
//	    simples3.WithRegion("eu-west-1"),
//	    simples3.WithCache(cache.NewMemory(10*time.Minute, 1000)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ok, err := client.CopyItem(ctx, simples3.Params{
//	    "source_bucket": "originals",
//	    "source":        "docs/report.pdf",
//	    "target_bucket": "archive",
//	    "target":        "2024/report.pdf",
//	})
//
// Custom commands implement CommandHandler and are added with Client.Register.
//
// Keys may be encoded for path safety with WithKeyEncoder. The encoder is
// applied before every SDK call; callers and the cache always see the
// original key.
package simples3
