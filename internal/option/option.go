package option

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mini-maxit/taucheck/pkg/errors"
)

// NoMatchError is returned when the input shares no prefix with any option.
type NoMatchError struct {
	Input string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching option for %q", e.Input)
}

func (e *NoMatchError) Unwrap() error {
	return errors.ErrNoMatch
}

// AmbiguousError is returned when several options share the longest prefix
// with the input.
type AmbiguousError struct {
	Input      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous prefix %q of [%s]", e.Input, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousError) Unwrap() error {
	return errors.ErrAmbiguous
}

type candidate struct {
	shared int
	name   string
}

// Resolve returns the option that input abbreviates. An exact match wins
// immediately; otherwise the option sharing the strictly longest common prefix
// with input is returned. Options shorter than input are never considered.
func Resolve(options []string, input string) (string, error) {
	candidates := make([]candidate, 0, len(options))
	for _, name := range options {
		if len(name) < len(input) {
			continue
		}
		if name == input {
			return name, nil
		}
		candidates = append(candidates, candidate{
			shared: commonPrefixLen(name, input),
			name:   name,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) == 0 || candidates[0].shared == 0 {
		return "", &NoMatchError{Input: input}
	}

	if len(candidates) >= 2 && candidates[0].shared == candidates[1].shared {
		tied := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if c.shared == candidates[0].shared {
				tied = append(tied, c.name)
			}
		}
		return "", &AmbiguousError{Input: input, Candidates: tied}
	}

	return candidates[0].name, nil
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
