package executor_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/mini-maxit/taucheck/internal/stages/executor"
	pkgerrors "github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/tests"
)

func TestExecuteCommand_Completed(t *testing.T) {
	dir := t.TempDir()
	input := tests.WriteFile(t, dir, "1.in", "1 2 3\n")

	var out bytes.Buffer
	res, err := NewExecutor().ExecuteCommand(context.Background(), CommandConfig{
		Command:   "tr ' ' '\\n'",
		InputPath: input,
		Stdout:    &out,
		TimeLimit: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Termination != Completed {
		t.Fatalf("expected completed, got %v", res.Termination)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", res.ExitCode)
	}
	if out.String() != "1\n2\n3\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if res.ExecTime <= 0 {
		t.Fatalf("expected positive exec time, got %s", res.ExecTime)
	}
}

func TestExecuteCommand_NonZeroExit(t *testing.T) {
	input := tests.WriteFile(t, t.TempDir(), "1.in", "")

	res, err := NewExecutor().ExecuteCommand(context.Background(), CommandConfig{
		Command:   "exit 3",
		InputPath: input,
		TimeLimit: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Termination != Crashed {
		t.Fatalf("expected crashed, got %v", res.Termination)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestExecuteCommand_Timeout(t *testing.T) {
	input := tests.WriteFile(t, t.TempDir(), "1.in", "")
	limit := 200 * time.Millisecond

	start := time.Now()
	res, err := NewExecutor().ExecuteCommand(context.Background(), CommandConfig{
		Command:   "sleep 10",
		InputPath: input,
		TimeLimit: limit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Termination != TimedOut {
		t.Fatalf("expected timeout, got %v", res.Termination)
	}
	if res.ExecTime != limit {
		t.Fatalf("expected exec time %s, got %s", limit, res.ExecTime)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("timed out program was not killed promptly")
	}
}

func TestExecuteCommand_MissingInput(t *testing.T) {
	_, err := NewExecutor().ExecuteCommand(context.Background(), CommandConfig{
		Command:   "cat",
		InputPath: filepath.Join(t.TempDir(), "missing.in"),
		TimeLimit: time.Second,
	})
	if !errors.Is(err, pkgerrors.ErrInputFile) {
		t.Fatalf("expected ErrInputFile, got %v", err)
	}
}

func TestExecuteCommand_ContextCancelled(t *testing.T) {
	input := tests.WriteFile(t, t.TempDir(), "1.in", "")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := NewExecutor().ExecuteCommand(ctx, CommandConfig{
		Command:   "sleep 10",
		InputPath: input,
		TimeLimit: 10 * time.Second,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTerminationString(t *testing.T) {
	if Completed.String() != "completed" || TimedOut.String() != "timed out" || Crashed.String() != "crashed" {
		t.Fatalf("unexpected termination names")
	}
	if Termination(42).String() != "unknown" {
		t.Fatalf("expected unknown for out of range termination")
	}
}
