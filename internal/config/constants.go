package config

import "time"

// app constants
const (
	AppName        = "prover"
	AppDescription = "Interactive channel to a theorem prover process"
	FileName       = "prover.yaml"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	Version = "0.1.0"
)

// process constants
const (
	DefaultExecutable = "isabelle"
	DefaultLogic      = "HOL"
)

// timeout constants
const (
	DefaultCloseTimeout    = 5 * time.Second
	DefaultSignalTimeout   = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)
