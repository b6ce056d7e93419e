package option_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	. "github.com/mini-maxit/taucheck/internal/option"
	pkgerrors "github.com/mini-maxit/taucheck/pkg/errors"
)

func TestResolve(t *testing.T) {
	orderings := []string{"lexicographical", "natural", "random", "size"}
	verifiers := []string{"identical", "loose", "checker"}

	tests := []struct {
		name    string
		options []string
		input   string
		want    string
	}{
		{name: "abbreviation", options: []string{"natural", "random", "size"}, input: "nat", want: "natural"},
		{name: "single letter", options: orderings, input: "s", want: "size"},
		{name: "exact match", options: verifiers, input: "loose", want: "loose"},
		{name: "typo after shared prefix", options: verifiers, input: "chekcer", want: "checker"},
		{name: "longest prefix wins", options: []string{"size", "sizeable"}, input: "sizea", want: "sizeable"},
		{name: "exact match beats longer names", options: []string{"size", "sizeable"}, input: "size", want: "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.options, tt.input)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	_, err := Resolve([]string{"random", "ranking", "size"}, "ran")
	if !errors.Is(err, pkgerrors.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}

	var amb *AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousError, got %T", err)
	}
	if !reflect.DeepEqual(amb.Candidates, []string{"random", "ranking"}) {
		t.Fatalf("unexpected candidates %v", amb.Candidates)
	}
	if !strings.Contains(err.Error(), "random") || !strings.Contains(err.Error(), "ranking") {
		t.Fatalf("error message should name both candidates: %v", err)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no shared prefix", input: "xyz"},
		{name: "empty input", input: ""},
		{name: "longer than every option", input: "naturalistic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve([]string{"natural", "random", "size"}, tt.input)
			if !errors.Is(err, pkgerrors.ErrNoMatch) {
				t.Fatalf("expected ErrNoMatch, got %v", err)
			}
			var nm *NoMatchError
			if !errors.As(err, &nm) || nm.Input != tt.input {
				t.Fatalf("expected *NoMatchError for %q, got %v", tt.input, err)
			}
		})
	}
}
