package cases_test

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	. "github.com/mini-maxit/taucheck/internal/cases"
	pkgerrors "github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/tests"
)

func TestCasePaths(t *testing.T) {
	c := New("case7", "/tests/in", "/tests/out")
	if c.InputPath != filepath.Join("/tests/in", "case7.in") {
		t.Fatalf("unexpected input path %q", c.InputPath)
	}
	if c.OutputPath != filepath.Join("/tests/out", "case7.out") {
		t.Fatalf("unexpected output path %q", c.OutputPath)
	}

	noOut := New("case7", "/tests/in", "")
	if noOut.OutputPath != "" {
		t.Fatalf("expected empty output path, got %q", noOut.OutputPath)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	tests.WriteFile(t, dir, "a.in", "1 2\n")
	tests.WriteFile(t, dir, "a.out", "3\n")
	tests.WriteFile(t, dir, "b10.in", "12345")
	tests.WriteFile(t, dir, "notes.txt", "ignored")
	tests.WriteFile(t, filepath.Join(dir, "nested.in"), "c.in", "ignored")

	found, err := Discover(dir, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := Names(found)
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b10" {
		t.Fatalf("unexpected cases %v", names)
	}

	for _, c := range found {
		if c.Name == "b10" && c.InputSize != 5 {
			t.Fatalf("expected input size 5, got %d", c.InputSize)
		}
		if c.OutputPath != OutputPath(dir, c.Name) {
			t.Fatalf("unexpected output path %q", c.OutputPath)
		}
	}
}

func TestDiscover_NoCases(t *testing.T) {
	dir := t.TempDir()
	tests.WriteFile(t, dir, "only.out", "x")

	_, err := Discover(dir, dir)
	if !errors.Is(err, pkgerrors.ErrNoCases) {
		t.Fatalf("expected ErrNoCases, got %v", err)
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
