package ordering

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"

	"github.com/mini-maxit/taucheck/internal/cases"
	"github.com/mini-maxit/taucheck/pkg/constants"
	"github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/pkg/status"
)

// Strategy returns the cases in the order they should be run. The input slice
// is never modified.
type Strategy func(cs []cases.Case) []cases.Case

// Names lists the available ordering strategies.
var Names = []string{
	constants.OrderLexicographical,
	constants.OrderNatural,
	constants.OrderRandom,
	constants.OrderSize,
}

// Lookup returns the strategy registered under name. rng is only used by the
// random ordering; a nil rng is seeded from the runtime's entropy source.
func Lookup(name string, rng *rand.Rand) (Strategy, error) {
	switch name {
	case constants.OrderLexicographical:
		return Lexicographical, nil
	case constants.OrderNatural:
		return Natural, nil
	case constants.OrderRandom:
		return Shuffled(rng), nil
	case constants.OrderSize:
		return BySize, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownOrdering, name)
	}
}

// NewSeededRand returns a deterministic generator for the random ordering.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func Lexicographical(cs []cases.Case) []cases.Case {
	out := slices.Clone(cs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func Natural(cs []cases.Case) []cases.Case {
	out := slices.Clone(cs)
	sort.SliceStable(out, func(i, j int) bool {
		return NaturalLess(out[i].Name, out[j].Name)
	})
	return out
}

// Shuffled returns a uniformly random ordering drawn from rng.
func Shuffled(rng *rand.Rand) Strategy {
	return func(cs []cases.Case) []cases.Case {
		out := slices.Clone(cs)
		shuffle := rand.Shuffle
		if rng != nil {
			shuffle = rng.Shuffle
		}
		shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
		return out
	}
}

// BySize runs the smallest inputs first.
func BySize(cs []cases.Case) []cases.Case {
	out := slices.Clone(cs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InputSize != out[j].InputSize {
			return out[i].InputSize < out[j].InputSize
		}
		return NaturalLess(out[i].Name, out[j].Name)
	})
	return out
}

// SortStatuses orders statuses by the natural key of their case names.
// Parallel runs report statuses in arrival order, this makes them deterministic.
func SortStatuses(statuses []status.VerifyStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		return NaturalLess(statuses[i].Case, statuses[j].Case)
	})
}

// NaturalLess compares names split into alternating runs of non-digits and
// digits. Digit runs compare as integers, so "case9" < "case10".
// Names with equal keys ("a01" and "a1") fall back to plain string order.
func NaturalLess(a, b string) bool {
	if c := compareNatural(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

func compareNatural(a, b string) int {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		var c int
		// Even positions hold text runs, odd positions hold digit runs.
		if i%2 == 0 {
			c = strings.Compare(ka[i], kb[i])
		} else {
			c = compareDigits(ka[i], kb[i])
		}
		if c != 0 {
			return c
		}
	}
	return len(ka) - len(kb)
}

// naturalKey splits s into text, digits, text, digits, ... always starting
// with a (possibly empty) text run.
func naturalKey(s string) []string {
	key := make([]string, 0, 4)
	start := 0
	digits := false
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit != digits {
			key = append(key, s[start:i])
			start = i
			digits = isDigit
		}
	}
	key = append(key, s[start:])
	// Keep the text/digit alternation when s ends in a digit run.
	if digits {
		key = append(key, "")
	}
	return key
}

// compareDigits compares two decimal digit strings numerically without
// overflowing on long runs.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
