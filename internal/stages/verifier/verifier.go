package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mini-maxit/taucheck/internal/cases"
	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/internal/stages/executor"
	"github.com/mini-maxit/taucheck/pkg/constants"
	customErr "github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/pkg/status"
	"go.uber.org/zap"
)

// Strategy decides how the captured output is judged.
type Strategy int

const (
	// Output must match the expected output byte for byte.
	Identical Strategy = iota + 1
	// Output must have the same whitespace separated tokens as the expected output.
	Loose
	// Output is judged by an external checker program.
	Checker
)

// StrategyNames lists the strategies in the order they are offered to users.
var StrategyNames = []string{
	constants.VerifyIdentical,
	constants.VerifyLoose,
	constants.VerifyChecker,
}

func (s Strategy) String() string {
	switch s {
	case Identical:
		return constants.VerifyIdentical
	case Loose:
		return constants.VerifyLoose
	case Checker:
		return constants.VerifyChecker
	default:
		return "unknown"
	}
}

func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case constants.VerifyIdentical:
		return Identical, nil
	case constants.VerifyLoose:
		return Loose, nil
	case constants.VerifyChecker:
		return Checker, nil
	default:
		return 0, fmt.Errorf("%w: %q", customErr.ErrUnknownStrategy, name)
	}
}

type Config struct {
	// Command invokes the program under test through the shell.
	Command   string
	InputDir  string
	OutputDir string
	Checker   string
	// Timeout is the soft limit. Runs are killed after twice this long.
	Timeout    time.Duration
	ScratchDir string
	Stderr     io.Writer
}

// Verifier runs the program for a single case and judges its output.
// An instance may be reused for many cases but must not be shared by
// concurrent callers.
type Verifier interface {
	InputPathOf(name string) string
	OutputPathOf(name string) string
	Run(ctx context.Context, name string) (status.VerifyStatus, error)
}

type verifier struct {
	strategy Strategy
	cfg      Config
	executor executor.Executor
	logger   *zap.SugaredLogger
}

// judgement is the verdict of a strategy plus the metadata it explains itself with.
type judgement struct {
	ok              bool
	diff            string
	checkerComment  string
	checkerExitCode *int
}

// NewVerifier binds cfg to strategy. Without an output directory the identical
// and loose strategies read expected outputs from the input directory.
func NewVerifier(strategy Strategy, cfg Config, runner executor.Executor) (Verifier, error) {
	if strategy < Identical || strategy > Checker {
		return nil, fmt.Errorf("%w: %d", customErr.ErrUnknownStrategy, strategy)
	}
	if cfg.Timeout <= 0 {
		return nil, customErr.ErrInvalidTimeout
	}
	if strategy == Checker && cfg.Checker == "" {
		return nil, customErr.ErrCheckerRequired
	}
	if strategy != Checker && cfg.OutputDir == "" {
		cfg.OutputDir = cfg.InputDir
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if runner == nil {
		runner = executor.NewExecutor()
	}

	return &verifier{
		strategy: strategy,
		cfg:      cfg,
		executor: runner,
		logger:   logger.NewNamedLogger("verifier"),
	}, nil
}

func (v *verifier) InputPathOf(name string) string {
	return cases.InputPath(v.cfg.InputDir, name)
}

// OutputPathOf returns "" when no output directory is configured.
func (v *verifier) OutputPathOf(name string) string {
	if v.cfg.OutputDir == "" {
		return ""
	}
	return cases.OutputPath(v.cfg.OutputDir, name)
}

// Run executes the program on the case input and judges the output. Crashes
// and timeouts are reported as Indeterminate statuses. An error means the case
// could not be verified at all and is never a verdict.
func (v *verifier) Run(ctx context.Context, name string) (st status.VerifyStatus, err error) {
	scratch, err := v.createScratchFile()
	if err != nil {
		return status.VerifyStatus{}, err
	}
	scratchPath := scratch.Name()
	defer func() {
		if rmErr := os.Remove(scratchPath); rmErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to remove %s: %w", customErr.ErrScratchFile, scratchPath, rmErr)
		}
	}()

	hardLimit := constants.HardTimeoutFactor * v.cfg.Timeout
	res, err := v.executor.ExecuteCommand(ctx, executor.CommandConfig{
		Command:   v.cfg.Command,
		InputPath: v.InputPathOf(name),
		Stdout:    scratch,
		Stderr:    v.cfg.Stderr,
		TimeLimit: hardLimit,
	})
	closeErr := scratch.Close()
	if err != nil {
		return status.VerifyStatus{}, err
	}
	if closeErr != nil {
		return status.VerifyStatus{}, fmt.Errorf("%w: failed to close %s: %w", customErr.ErrScratchFile, scratchPath, closeErr)
	}

	switch res.Termination {
	case executor.TimedOut:
		v.logger.Infof("Case %s timed out after %s", name, hardLimit)
		return status.VerifyStatus{
			Outcome: status.Indeterminate,
			Elapsed: hardLimit,
			Case:    name,
			Meta:    status.Metadata{TimedOut: true},
		}, nil
	case executor.Crashed:
		v.logger.Infof("Case %s exited with code %d", name, res.ExitCode)
		return status.VerifyStatus{
			Outcome: status.Indeterminate,
			Elapsed: roundElapsed(res.ExecTime),
			Case:    name,
			Meta:    status.Metadata{ExitCode: status.IntPtr(res.ExitCode)},
		}, nil
	}

	j, err := v.judge(ctx, name, scratchPath)
	if err != nil {
		return status.VerifyStatus{}, err
	}

	outcome := status.Fail
	if j.ok {
		outcome = status.Pass
	}
	v.logger.Debugf("Case %s judged %s in %s", name, outcome, res.ExecTime)

	return status.VerifyStatus{
		Outcome: outcome,
		Elapsed: roundElapsed(res.ExecTime),
		Case:    name,
		Meta: status.Metadata{
			TimedOut:        res.ExecTime > v.cfg.Timeout,
			ExitCode:        status.IntPtr(res.ExitCode),
			Diff:            j.diff,
			CheckerComment:  j.checkerComment,
			CheckerExitCode: j.checkerExitCode,
		},
	}, nil
}

// createScratchFile creates a uniquely named file for the program output.
// The short random suffix makes collisions between concurrent runs unlikely;
// O_EXCL turns the remaining ones into errors instead of shared files.
func (v *verifier) createScratchFile() (*os.File, error) {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.ScratchSuffixLength]
	path := filepath.Join(v.cfg.ScratchDir, constants.ScratchFilePrefix+suffix+constants.ScratchFileExt)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.ScratchFilePerm)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %w", customErr.ErrScratchFile, path, err)
	}
	return f, nil
}

func (v *verifier) judge(ctx context.Context, name, gotPath string) (judgement, error) {
	if v.strategy == Checker {
		return v.runChecker(ctx, name, gotPath)
	}

	expected, err := os.ReadFile(v.OutputPathOf(name))
	if err != nil {
		return judgement{}, fmt.Errorf("%w: %w", customErr.ErrExpectedOutput, err)
	}
	got, err := os.ReadFile(gotPath)
	if err != nil {
		return judgement{}, fmt.Errorf("%w: failed to read %s: %w", customErr.ErrScratchFile, gotPath, err)
	}

	var ok bool
	switch v.strategy {
	case Identical:
		ok = bytes.Equal(expected, got)
	case Loose:
		ok = slices.Equal(strings.Fields(string(expected)), strings.Fields(string(got)))
	}
	if ok {
		return judgement{ok: true}, nil
	}

	return judgement{ok: false, diff: ResultDiff(string(expected), string(got))}, nil
}

// runChecker calls <checker> <input> [<expected>] <got>. A non-zero exit code
// means a wrong answer; a checker that cannot start, times out or dies from a
// signal is an error.
func (v *verifier) runChecker(ctx context.Context, name, gotPath string) (judgement, error) {
	args := []string{v.InputPathOf(name)}
	if expected := v.OutputPathOf(name); expected != "" {
		args = append(args, expected)
	}
	args = append(args, gotPath)

	checkCtx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, v.cfg.Checker, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = v.cfg.Stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() != nil {
		return judgement{}, ctx.Err()
	}
	if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
		return judgement{}, fmt.Errorf("%w: timed out after %s", customErr.ErrCheckerFailed, v.cfg.Timeout)
	}

	exitCode := constants.ExitCodeSuccess
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return judgement{}, fmt.Errorf("%w: %w", customErr.ErrCheckerFailed, err)
		}
		if exitErr.ExitCode() == constants.ExitCodeSignaled {
			return judgement{}, fmt.Errorf("%w: %w", customErr.ErrCheckerFailed, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return judgement{
		ok:              exitCode == constants.ExitCodeSuccess,
		checkerComment:  stdout.String(),
		checkerExitCode: status.IntPtr(exitCode),
	}, nil
}

func roundElapsed(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}
