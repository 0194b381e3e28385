package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"

	"github.com/cloudgroundcontrol/voice-channel/pkg/app"
	"github.com/cloudgroundcontrol/voice-channel/pkg/cli"
	"github.com/cloudgroundcontrol/voice-channel/pkg/config"
)

func main() {
	if err := run(); err != nil {
		formatter := cli.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log.SetLevel(cfg.LogLvl())
	log.SetHeader("(${short_file}:${line}) ${time_rfc3339} ${level}: ")

	// Local recordings need a writable directory up front
	if cfg.RecordingsDir != "" {
		if err = os.MkdirAll(cfg.RecordingsDir, 0755); err != nil {
			return err
		}
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
