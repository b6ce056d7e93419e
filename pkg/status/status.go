package status

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type Outcome int

const (
	// Means the output of the program was judged correct.
	Pass Outcome = iota + 1
	// Means the output of the program was judged incorrect.
	Fail
	// Means the program crashed or timed out, so correctness is unknown.
	Indeterminate
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "pass":
		*o = Pass
	case "fail":
		*o = Fail
	case "indeterminate":
		*o = Indeterminate
	default:
		return fmt.Errorf("unknown outcome %q", s)
	}
	return nil
}

// Metadata explains an outcome. ExitCode is nil when the program never exited
// on its own (it was killed on timeout).
type Metadata struct {
	TimedOut        bool   `json:"timed_out"`
	ExitCode        *int   `json:"exit_code,omitempty"`
	Diff            string `json:"diff,omitempty"`
	CheckerComment  string `json:"checker_comment,omitempty"`
	CheckerExitCode *int   `json:"checker_exit_code,omitempty"`
}

// VerifyStatus is the result of running a single case.
type VerifyStatus struct {
	Outcome Outcome       `json:"outcome"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Case    string        `json:"case"`
	Meta    Metadata      `json:"meta"`
}

func (s VerifyStatus) Passed() bool {
	return s.Outcome == Pass
}

// Summary is the final tally of a run.
type Summary struct {
	Correct  int           `json:"correct"`
	Total    int           `json:"total"`
	Percent  float64       `json:"percent"`
	Accepted bool          `json:"accepted"`
	Stopped  bool          `json:"stopped"`
	Duration time.Duration `json:"duration_ns"`
}

// Summarize counts passing statuses. A run is accepted iff every status passed.
func Summarize(statuses []VerifyStatus, duration time.Duration, stopped bool) Summary {
	correct := 0
	for _, s := range statuses {
		if s.Passed() {
			correct++
		}
	}

	percent := 0.0
	if len(statuses) > 0 {
		percent = math.Round(float64(correct)/float64(len(statuses))*1000) / 10
	}

	return Summary{
		Correct:  correct,
		Total:    len(statuses),
		Percent:  percent,
		Accepted: correct == len(statuses),
		Stopped:  stopped,
		Duration: duration,
	}
}

func IntPtr(v int) *int {
	return &v
}
