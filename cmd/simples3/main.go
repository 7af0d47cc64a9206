package main

import (
	"context"
	"fmt"
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/cli"
)

func main() {
	root, app := cli.NewRootCommand(nil)
	err := root.ExecuteContext(context.Background())
	if closeErr := app.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "simples3:", err)
		os.Exit(1)
	}
}
