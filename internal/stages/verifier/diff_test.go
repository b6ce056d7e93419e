package verifier_test

import (
	"strings"
	"testing"

	. "github.com/mini-maxit/taucheck/internal/stages/verifier"
)

func TestResultDiff(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		got      string
		want     string
	}{
		{
			name:     "equal",
			expected: "a\nb\n",
			got:      "a\nb\n",
			want:     "",
		},
		{
			name:     "replace",
			expected: "1\n2\n3\n",
			got:      "1\n4\n3\n",
			want:     "replace   a[1:2] --> b[1:2]  [\"2\\n\"] --> [\"4\\n\"]\n",
		},
		{
			name:     "insert",
			expected: "1\n",
			got:      "1\n2\n",
			want:     "insert    a[1:1] --> b[1:2]       [] --> [\"2\\n\"]\n",
		},
		{
			name:     "delete",
			expected: "1\n2\n",
			got:      "1\n",
			want:     "delete    a[1:2] --> b[1:1]  [\"2\\n\"] --> []\n",
		},
		{
			name:     "missing trailing newline",
			expected: "1\n",
			got:      "1",
			want:     "replace   a[0:1] --> b[0:1]  [\"1\\n\"] --> [\"1\"]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultDiff(tt.expected, tt.got); got != tt.want {
				t.Fatalf("ResultDiff() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestResultDiff_OneLinePerOpcode(t *testing.T) {
	diff := ResultDiff("a\nb\nc\nd\n", "x\nb\nc\n")
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 opcode lines, got %q", diff)
	}
	if !strings.HasPrefix(lines[0], "replace") || !strings.HasPrefix(lines[1], "delete") {
		t.Fatalf("unexpected opcodes %q", diff)
	}
}
