package main

import (
	"context"
	"fmt"
	"os"

	"mentordash/internal/cli"
	"mentordash/internal/platform/config"
	"mentordash/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logging.Setup(os.Stderr, "text", cfg.LogLevel)
	return cli.NewRootCmd(cli.NewApp(cfg)).ExecuteContext(context.Background())
}
