package console

import "go.uber.org/fx"

// Module provides the console
var Module = fx.Options(
	fx.Provide(NewConsole),
)
