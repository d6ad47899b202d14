package errors

import (
	"errors"
)

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrExecutableRequired  = errors.New("process executable is required")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrFailedToLoadEnvFile = errors.New("failed to load environment file")

	ErrFailedToCreatePipe       = errors.New("failed to create pipe")
	ErrFailedToStartProcess     = errors.New("failed to start process")
	ErrFailedToTerminateProcess = errors.New("failed to terminate process")

	ErrChannelClosing   = errors.New("cannot output: already closing")
	ErrOutputAborted    = errors.New("cannot output: aborted")
	ErrCloseTimeout     = errors.New("cannot close input: timeout")
	ErrNoProcess        = errors.New("cannot interrupt: no process")
	ErrInterruptFailed  = errors.New("cannot interrupt: kill failed")
	ErrInterruptAborted = errors.New("cannot interrupt: aborted")

	ErrQueueClosed      = errors.New("queue closed")
	ErrMalformedLiteral = errors.New("malformed string literal")

	ErrUnknownCommand = errors.New("unknown command")
	ErrFileExists     = errors.New("file already exists")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
