package display

import "go.uber.org/fx"

var Module = fx.Module("display.service",
	fx.Provide(New),
)
