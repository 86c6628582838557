package connectivity

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"connectivity",
		fx.Provide(New),
	)
}
