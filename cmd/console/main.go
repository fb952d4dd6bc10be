package main

import (
	"os"

	"civiq/internal/cli"
	"civiq/pkg/config"
)

func main() {
	cfg := config.New()
	if err := cli.NewRootCmd(cfg.Console).Execute(); err != nil {
		os.Exit(1)
	}
}
