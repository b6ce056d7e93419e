package constants

import (
	"encoding/json"
	"testing"
)

func TestWorkerStatus(t *testing.T) {
	tests := []struct {
		status   WorkerStatus
		expected string
	}{
		{status: WorkerStatusIdle, expected: "idle"},
		{status: WorkerStatusBusy, expected: "busy"},
		{status: WorkerStatus(999), expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("WorkerStatus.String() = %v, want %v", got, tt.expected)
			}

			data, err := json.Marshal(map[int]WorkerStatus{0: tt.status})
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if want := `{"0":"` + tt.expected + `"}`; string(data) != want {
				t.Errorf("json.Marshal() = %s, want %s", data, want)
			}
		})
	}
}

func TestReportTagsAreAligned(t *testing.T) {
	tags := []string{ReportTagPass, ReportTagFail, ReportTagTimeout, ReportTagUnknown}
	for _, tag := range tags {
		if len(tag) != len(ReportTagTimeout) {
			t.Errorf("tag %q has width %d, want %d", tag, len(tag), len(ReportTagTimeout))
		}
	}
}

func TestDefaultsAreValidNames(t *testing.T) {
	orders := map[string]bool{OrderLexicographical: true, OrderNatural: true, OrderRandom: true, OrderSize: true}
	if !orders[DefaultOrder] {
		t.Errorf("default order %q is not a known ordering", DefaultOrder)
	}
	verifiers := map[string]bool{VerifyIdentical: true, VerifyLoose: true, VerifyChecker: true}
	if !verifiers[DefaultVerify] {
		t.Errorf("default verification %q is not a known strategy", DefaultVerify)
	}
	if DefaultProcesses < 1 || DefaultTimeoutSec <= 0 {
		t.Errorf("defaults must describe a runnable configuration")
	}
}
