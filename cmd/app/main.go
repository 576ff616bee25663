// Command app serves the FinScope report API.
package main

import (
	"flag"
	"fmt"
	"os"

	"FinScope/internal/di"
	"FinScope/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "finscope: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultPath := "config/config.yaml"
	if p := os.Getenv("FINSCOPE_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "config file path")
	checkOnly := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", *configPath, err)
	}
	if *checkOnly {
		fmt.Printf("config ok: env=%s cache=%s archive=%s\n", cfg.Environment, cfg.Cache.Backend, cfg.Archive.Backend)
		return nil
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return app.Run()
}
