package errors

import "errors"

// Error messages.
var (
	ErrNoMatch         = errors.New("no matching option")
	ErrAmbiguous       = errors.New("ambiguous option")
	ErrUnknownOrdering = errors.New("unknown ordering strategy")
	ErrUnknownStrategy = errors.New("unknown verification strategy")
	ErrCheckerRequired = errors.New("checker program is required for checker verification")
	ErrNoCases         = errors.New("no test cases found")
	ErrInputFile       = errors.New("failed to open input file")
	ErrExpectedOutput  = errors.New("failed to read expected output")
	ErrScratchFile     = errors.New("scratch output file error")
	ErrCheckerFailed   = errors.New("checker program failed")
	ErrProcessStart    = errors.New("failed to start subject program")
	ErrInvalidTimeout  = errors.New("timeout must be positive")
	ErrInvalidWorkers  = errors.New("worker count must be positive")
	ErrPublisherClosed = errors.New("result publisher is closed")
	ErrInvalidFormat   = errors.New("invalid output format")
)
