package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mini-maxit/taucheck/pkg/constants"
	customErr "github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/pkg/status"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats defines the allowed report formats.
var ValidFormats = []string{FormatText, FormatJSON}

// Reporter renders the statuses of a finished run. Statuses are rendered in
// the order given.
type Reporter interface {
	Report(w io.Writer, statuses []status.VerifyStatus, summary status.Summary) error
}

// NewReporter returns the reporter for format. Verbosity only affects text
// reports: 0 lists non-passing cases, 1 and above lists every case together
// with its diff and checker comment.
func NewReporter(format string, verbosity int) (Reporter, error) {
	switch format {
	case FormatText:
		return &textReporter{verbosity: verbosity}, nil
	case FormatJSON:
		return &jsonReporter{}, nil
	default:
		return nil, fmt.Errorf("%w %q: must be one of %v", customErr.ErrInvalidFormat, format, ValidFormats)
	}
}

// Tag is the short verdict shown in front of a case name.
func Tag(s status.VerifyStatus) string {
	switch s.Outcome {
	case status.Pass:
		return constants.ReportTagPass
	case status.Fail:
		return constants.ReportTagFail
	}
	if s.Meta.TimedOut {
		return constants.ReportTagTimeout
	}
	return constants.ReportTagUnknown
}

type textReporter struct {
	verbosity int
}

func (r *textReporter) Report(w io.Writer, statuses []status.VerifyStatus, summary status.Summary) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Correct: %d/%d (%.1f%%)\n", summary.Correct, summary.Total, summary.Percent)
	if summary.Stopped {
		sb.WriteString("[!] Stopped at the first non-passing case\n")
	}
	if summary.Accepted {
		sb.WriteString(constants.ReportAccepted + "\n")
	} else {
		sb.WriteString(constants.ReportRejected + "\n")
	}

	sb.WriteString("===\nTest summary\n===\n")
	for _, s := range statuses {
		if r.verbosity == 0 && s.Passed() {
			continue
		}
		r.writeStatus(&sb, s)
	}

	fmt.Fprintf(&sb, "Done in %.3fs\n", summary.Duration.Seconds())

	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *textReporter) writeStatus(sb *strings.Builder, s status.VerifyStatus) {
	code := constants.ReportUnknownCode
	if s.Meta.ExitCode != nil {
		code = fmt.Sprint(*s.Meta.ExitCode)
	}
	check := ""
	if s.Meta.CheckerExitCode != nil {
		check = fmt.Sprintf(" (check: %d)", *s.Meta.CheckerExitCode)
	}
	fmt.Fprintf(sb, "- %s %s (%6.3fs) -> %s%s\n", Tag(s), s.Case, s.Elapsed.Seconds(), code, check)

	if r.verbosity == 0 {
		return
	}
	if s.Meta.Diff != "" {
		if len(s.Meta.Diff) > constants.ReportMaxDiffLen {
			sb.WriteString("[..diff too long, snip..]\n")
		} else {
			sb.WriteString(s.Meta.Diff)
		}
	}
	if s.Meta.CheckerComment != "" {
		fmt.Fprintf(sb, "Checker (code %d) comment:\n", *s.Meta.CheckerExitCode)
		sb.WriteString(s.Meta.CheckerComment)
		if !strings.HasSuffix(s.Meta.CheckerComment, "\n") {
			sb.WriteString("\n")
		}
	}
}

// Response is the JSON envelope of a report.
type Response struct {
	Status string      `json:"status"`
	Data   *ReportData `json:"data,omitempty"`
}

type ReportData struct {
	Summary  status.Summary        `json:"summary"`
	Statuses []status.VerifyStatus `json:"statuses"`
}

type jsonReporter struct{}

func (r *jsonReporter) Report(w io.Writer, statuses []status.VerifyStatus, summary status.Summary) error {
	if statuses == nil {
		statuses = []status.VerifyStatus{}
	}

	resp := Response{
		Status: "ok",
		Data:   &ReportData{Summary: summary, Statuses: statuses},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
