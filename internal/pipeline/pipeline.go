package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/internal/stages/verifier"
	"github.com/mini-maxit/taucheck/pkg/constants"
	"github.com/mini-maxit/taucheck/pkg/status"
	"go.uber.org/zap"
)

// VerifierFactory builds the verifier owned by the worker with the given id.
type VerifierFactory func(workerID int) (verifier.Verifier, error)

// Outcome is the result of processing one case: a status, or the error that
// prevented the case from being verified.
type Outcome struct {
	Case   string
	Status status.VerifyStatus
	Err    error
}

type Worker interface {
	ProcessCase(ctx context.Context, name string) Outcome
	GetState() WorkerState
	UpdateStatus(status constants.WorkerStatus)
	GetId() int
}

type WorkerState struct {
	Status         constants.WorkerStatus `json:"status"`
	ProcessingCase string                 `json:"processing_case"`
}

type worker struct {
	id       int
	mu       sync.Mutex
	state    WorkerState
	verifier verifier.Verifier
	logger   *zap.SugaredLogger
}

func NewWorker(id int, verifier verifier.Verifier) Worker {
	logger := logger.NewNamedLogger(fmt.Sprintf("worker-%d", id))

	return &worker{
		id:       id,
		state:    WorkerState{Status: constants.WorkerStatusIdle, ProcessingCase: ""},
		verifier: verifier,
		logger:   logger,
	}
}

func (ws *worker) GetId() int {
	return ws.id
}

func (ws *worker) GetState() WorkerState {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.state
}

func (ws *worker) UpdateStatus(status constants.WorkerStatus) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.state.Status = status
}

func (ws *worker) setProcessingCase(name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.state.ProcessingCase = name
}

// ProcessCase verifies a single case. A panic in the verifier is turned into
// an error outcome so one case cannot take the whole run down silently.
func (ws *worker) ProcessCase(ctx context.Context, name string) (out Outcome) {
	out.Case = name

	defer func() {
		if r := recover(); r != nil {
			ws.logger.Errorf("Recovered while processing case %s: %v", name, r)
			out.Err = fmt.Errorf("worker %d panicked: %v", ws.id, r)
		}
	}()

	ws.logger.Debugf("Processing case %s", name)
	ws.setProcessingCase(name)
	defer ws.setProcessingCase("")

	st, err := ws.verifier.Run(ctx, name)
	if err != nil {
		ws.logger.Errorf("Failed to verify case %s: %s", name, err)
		out.Err = err
		return out
	}

	ws.logger.Debugf("Finished case %s: %s", name, st.Outcome)
	out.Status = st
	return out
}
