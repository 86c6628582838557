package internal

import (
	"context"
	"errors"
	"flag"
	"os"

	"bizdash/internal/cli"
	"bizdash/internal/config"
	"bizdash/internal/connectivity"
	"bizdash/internal/dispatch"
	"bizdash/internal/gateway"
	"bizdash/internal/insights"
	"bizdash/internal/llm"
	"bizdash/internal/logging"
	"bizdash/internal/persistence"
	"bizdash/internal/store"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	opts, err := cli.ParseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		fx.Supply(opts),
		fx.Decorate(opts.Apply),
		logging.Module(),
		connectivity.Module(),
		store.Module(),
		gateway.Module(),
		persistence.Module(),
		dispatch.Module(),
		llm.Module(),
		insights.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
