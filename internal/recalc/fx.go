package recalc

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("recalc",
	fx.Provide(NewMetrics),
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, r *Recalculator) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			r.Close()
			return nil
		},
	})
}
