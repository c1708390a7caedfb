package main

import (
	"log"
	"os"

	"mentordash/internal/app/server"
	"mentordash/internal/platform/config"
	"mentordash/internal/platform/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err := server.Run(cfg, logger); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
