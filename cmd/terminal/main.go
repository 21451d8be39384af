package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/riskibarqy/predictz/internal/app"
	"github.com/riskibarqy/predictz/internal/config"
	"github.com/riskibarqy/predictz/internal/interfaces/terminal"
	"github.com/riskibarqy/predictz/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	// Log lines would tear through the menu; keep only warnings and up.
	if cfg.LogLevel < logging.LevelWarn {
		cfg.LogLevel = logging.LevelWarn
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build app: %v\n", err)
		os.Exit(1)
	}

	menu := terminal.NewMenu(application.Fixtures, application.Analysis, application.Reports, terminal.Config{
		In:      os.Stdin,
		Out:     color.Output,
		NoColor: color.NoColor,
	}, application.Logger)
	runErr := menu.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = application.Close(shutdownCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", runErr)
		os.Exit(1)
	}
}
