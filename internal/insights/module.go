package insights

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"insights",
		fx.Provide(New),
	)
}
