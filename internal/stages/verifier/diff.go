package verifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var opcodeNames = map[byte]string{
	'r': "replace",
	'd': "delete",
	'i': "insert",
}

// ResultDiff describes how got differs from expected, one line per non-equal
// opcode of a line-level sequence match:
//
//	replace   a[1:2] --> b[1:2] ["2\n"] --> ["4\n"]
//
// Lines keep their terminators, so any byte difference produces at least one line.
func ResultDiff(expected, got string) string {
	a, b := splitLines(expected), splitLines(got)

	var sb strings.Builder
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		name, ok := opcodeNames[op.Tag]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%-7s   a[%d:%d] --> b[%d:%d] %8s --> %s\n",
			name, op.I1, op.I2, op.J1, op.J2,
			quoteLines(a[op.I1:op.I2]), quoteLines(b[op.J1:op.J2]))
	}
	return sb.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func quoteLines(lines []string) string {
	quoted := make([]string, len(lines))
	for i, l := range lines {
		quoted[i] = strconv.Quote(l)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
