package constants

import "encoding/json"

// Case file naming.
const (
	InputFileExt  = ".in"
	OutputFileExt = ".out"
)

// Scratch output files.
const (
	ScratchFilePrefix   = "taucheck-"
	ScratchFileExt      = ".out"
	ScratchSuffixLength = 8
	ScratchFilePerm     = 0o644
	HardTimeoutFactor   = 2
)

// Strategy names.
const (
	OrderLexicographical = "lexicographical"
	OrderNatural         = "natural"
	OrderRandom          = "random"
	OrderSize            = "size"

	VerifyIdentical = "identical"
	VerifyLoose     = "loose"
	VerifyChecker   = "checker"
)

// Exit codes.
const (
	ExitCodeSuccess = 0
	// Reported by exec when the process was terminated by a signal.
	ExitCodeSignaled = -1
)

// CLI exit codes.
const (
	ExitAccepted     = 0
	ExitRejected     = 1
	ExitCommandError = 2
)

// Worker specific constants.
type WorkerStatus int

const (
	WorkerStatusIdle WorkerStatus = iota
	WorkerStatusBusy
)

func (s WorkerStatus) String() string {
	switch s {
	case WorkerStatusIdle:
		return "idle"
	case WorkerStatusBusy:
		return "busy"
	default:
		return "unknown"
	}
}

func (s WorkerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Configuration constants.
const (
	DefaultOrder         = OrderNatural
	DefaultVerify        = VerifyLoose
	DefaultTimeoutSec    = 600.0
	DefaultProcesses     = 1
	DefaultFormat        = "text"
	DefaultAmqpQueueName = "taucheck_results"
	DefaultLogDir        = ""
	DefaultLogFileName   = "taucheck.log"
	EnvFileName          = ".env"
)

// Environment variable names.
const (
	EnvOrder      = "TAUCHECK_ORDER"
	EnvVerify     = "TAUCHECK_VERIFY"
	EnvTimeout    = "TAUCHECK_TIMEOUT"
	EnvProcesses  = "TAUCHECK_PROCESSES"
	EnvChecker    = "TAUCHECK_CHECKER"
	EnvScratchDir = "TAUCHECK_SCRATCH_DIR"
	EnvAmqpURL    = "TAUCHECK_AMQP_URL"
	EnvAmqpQueue  = "TAUCHECK_AMQP_QUEUE"
	EnvLogDir     = "LOG_DIR"
)

// Report constants.
const (
	ReportTagPass     = " OK"
	ReportTagFail     = " WA"
	ReportTagTimeout  = "TLE"
	ReportTagUnknown  = " ??"
	ReportUnknownCode = "??"
	ReportMaxDiffLen  = 512
	ReportAccepted    = "AC! :)"
	ReportRejected    = "WA :("
)

// Queue message types.
const (
	QueueMessageTypeStatus  = "status"
	QueueMessageTypeSummary = "summary"
)

// RabbitMQ specific constants.
const (
	RabbitMQReconnectTries  = 5
	RabbitMQReconnectDelay  = 2 // seconds
	RabbitMQPublishChanSize = 64
)
