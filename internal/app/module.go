package app

import (
	"go.uber.org/fx"

	"prover/internal/app/cli"
	"prover/internal/app/console"
	"prover/internal/app/engine"
)

var Module = fx.Options(
	engine.Module,
	console.Module,
	cli.Module,
	fx.Provide(NewApp),
	fx.Invoke(Register),
)
