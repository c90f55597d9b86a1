package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/churnboard/internal/app"
	"github.com/yungbote/churnboard/internal/platform/shutdown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (overrides CHURNBOARD_CONFIG_PATH)")
	flag.Parse()
	if *configPath != "" {
		_ = os.Setenv("CHURNBOARD_CONFIG_PATH", *configPath)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		a.Log.Error("server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
}
