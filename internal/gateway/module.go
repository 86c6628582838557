package gateway

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"gateway",
		fx.Provide(New),
	)
}
