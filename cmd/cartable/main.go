package main

import (
	"fmt"
	"os"

	"cartable/internal/cli"
	"cartable/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()

	opts := cli.Options{Config: cfg}
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "cartable", cfg.LogMaxFiles)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logFile.Close()
		opts.LogOutput = logFile
	}

	if err := cli.NewRootCommand(opts).Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
