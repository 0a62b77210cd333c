// Command sercha-library browses and manages a content library.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-library/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, bootstrap)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, configPath string) (cli.Services, func() error, error) {
	a, err := app.New(ctx, app.Options{ConfigPath: configPath})
	if err != nil {
		return cli.Services{}, nil, err
	}
	return cli.Services{
		Library:       a.Library,
		Assistant:     a.Assistant,
		Settings:      a.Config,
		Notifications: a.Notifier,
		Changes:       a.Changes,
		WatchDir:      a.Settings.WatchDir,
		Start:         a.Start,
	}, a.Close, nil
}
