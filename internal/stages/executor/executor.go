package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/pkg/constants"
	customErr "github.com/mini-maxit/taucheck/pkg/errors"
	"go.uber.org/zap"
)

// Termination tells how a run ended.
type Termination int

const (
	// The program exited with status 0.
	Completed Termination = iota
	// The program exceeded the time limit and was killed.
	TimedOut
	// The program exited with a non-zero status or was killed by a signal.
	Crashed
)

func (t Termination) String() string {
	switch t {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	case Crashed:
		return "crashed"
	default:
		return "unknown"
	}
}

type CommandConfig struct {
	// Command is run through the platform shell.
	Command   string
	InputPath string
	Stdout    io.Writer
	// Stderr of the program, discarded when nil.
	Stderr    io.Writer
	TimeLimit time.Duration
}

// ExecutionResult is the outcome of a single run. ExitCode is only
// meaningful for Completed and Crashed runs.
type ExecutionResult struct {
	Termination Termination
	ExitCode    int
	ExecTime    time.Duration
}

type Executor interface {
	ExecuteCommand(ctx context.Context, cfg CommandConfig) (*ExecutionResult, error)
}

type executor struct {
	logger *zap.SugaredLogger
}

func NewExecutor() Executor {
	return &executor{logger: logger.NewNamedLogger("executor")}
}

// ExecuteCommand runs cfg.Command with the input file on stdin. When the time
// limit passes the whole process group is killed and waited for before
// returning, so no process outlives the call. An error is returned only when
// the program could not be run at all or ctx was cancelled.
func (e *executor) ExecuteCommand(ctx context.Context, cfg CommandConfig) (*ExecutionResult, error) {
	input, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", customErr.ErrInputFile, cfg.InputPath, err)
	}
	defer input.Close()

	runCtx, cancel := context.WithTimeout(ctx, cfg.TimeLimit)
	defer cancel()

	cmd := shellCommand(runCtx, cfg.Command)
	cmd.Stdin = input
	cmd.Stdout = cfg.Stdout
	cmd.Stderr = cfg.Stderr
	configureCommandProcess(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", customErr.ErrProcessStart, err)
	}
	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		e.logger.Debugf("Killed %q after %s", cfg.Command, cfg.TimeLimit)
		return &ExecutionResult{
			Termination: TimedOut,
			ExecTime:    cfg.TimeLimit,
		}, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("error waiting for %q: %w", cfg.Command, waitErr)
		}
		e.logger.Debugf("%q exited with code %d", cfg.Command, exitErr.ExitCode())
		return &ExecutionResult{
			Termination: Crashed,
			ExitCode:    exitErr.ExitCode(),
			ExecTime:    elapsed,
		}, nil
	}

	return &ExecutionResult{
		Termination: Completed,
		ExitCode:    constants.ExitCodeSuccess,
		ExecTime:    elapsed,
	}, nil
}
