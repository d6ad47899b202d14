package engine

import (
	"go.uber.org/fx"
)

// Module provides the session factory
var Module = fx.Options(
	fx.Provide(NewFactory),
)
