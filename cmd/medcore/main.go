package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"medcore/m/internal/cli"
	"medcore/m/internal/config"
	"medcore/m/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
