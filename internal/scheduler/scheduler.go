package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mini-maxit/taucheck/internal/cases"
	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/internal/pipeline"
	"github.com/mini-maxit/taucheck/pkg/constants"
	"github.com/mini-maxit/taucheck/pkg/status"
	"go.uber.org/zap"
)

// Result of a run. Statuses are in input order for sequential runs and in
// completion order for parallel ones.
type Result struct {
	Statuses []status.VerifyStatus
	// Stopped is set when fail-fast skipped the remaining cases.
	Stopped bool
	// Executed counts the cases handed to a worker, including discarded ones.
	Executed int
}

type Scheduler interface {
	Run(ctx context.Context, cs []cases.Case, onStatus func(status.VerifyStatus)) (Result, error)
	GetWorkersStatus() map[string]interface{}
}

type scheduler struct {
	mu               sync.Mutex
	busyWorkersCount int
	workers          []pipeline.Worker
	failFast         bool
	logger           *zap.SugaredLogger
}

// NewScheduler builds the worker pool up front, one verifier per worker.
// A single worker runs the cases on the calling goroutine.
func NewScheduler(maxWorkers int, factory pipeline.VerifierFactory, failFast bool) (Scheduler, error) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	workers := make([]pipeline.Worker, 0, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		v, err := factory(i)
		if err != nil {
			return nil, err
		}
		workers = append(workers, pipeline.NewWorker(i, v))
	}

	return &scheduler{
		mu:       sync.Mutex{},
		workers:  workers,
		failFast: failFast,
		logger:   logger.NewNamedLogger("workerPool"),
	}, nil
}

func (s *scheduler) GetWorkersStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make(map[int]string, len(s.workers))

	for _, worker := range s.workers {
		state := worker.GetState()
		if state.Status == constants.WorkerStatusBusy && state.ProcessingCase != "" {
			statuses[worker.GetId()] = state.Status.String() + " processing case: " + state.ProcessingCase
			continue
		}
		statuses[worker.GetId()] = state.Status.String()
	}

	return map[string]interface{}{
		"busy_workers":  s.busyWorkersCount,
		"total_workers": len(s.workers),
		"worker_status": statuses,
	}
}

func (s *scheduler) Run(ctx context.Context, cs []cases.Case, onStatus func(status.VerifyStatus)) (Result, error) {
	if onStatus == nil {
		onStatus = func(status.VerifyStatus) {}
	}

	if len(s.workers) == 1 {
		return s.runSequential(ctx, cs, onStatus)
	}
	return s.runParallel(ctx, cs, onStatus)
}

func (s *scheduler) runSequential(ctx context.Context, cs []cases.Case, onStatus func(status.VerifyStatus)) (Result, error) {
	w := s.workers[0]
	res := Result{Statuses: make([]status.VerifyStatus, 0, len(cs))}
	for i, c := range cs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Executed++
		out := s.process(ctx, w, c.Name)
		if out.Err != nil {
			return res, fmt.Errorf("case %s: %w", out.Case, out.Err)
		}

		res.Statuses = append(res.Statuses, out.Status)
		onStatus(out.Status)

		if s.failFast && !out.Status.Passed() {
			res.Stopped = i < len(cs)-1
			s.logger.Infof("Stopping after case %s: %s", c.Name, out.Status.Outcome)
			break
		}
	}

	return res, nil
}

// runParallel hands cases to idle workers over an unbuffered channel, so a
// case is only taken when a worker is ready for it. A stop is requested as
// soon as the triggering outcome is received; a send already racing with it
// may still hand out one more case. Results arriving after the stop are
// dropped and runs already in progress are allowed to finish.
func (s *scheduler) runParallel(ctx context.Context, cs []cases.Case, onStatus func(status.VerifyStatus)) (Result, error) {
	jobs := make(chan string)
	outcomes := make(chan pipeline.Outcome)
	stop := make(chan struct{})
	var stopOnce sync.Once
	requestStop := func() { stopOnce.Do(func() { close(stop) }) }

	var dispatched atomic.Int64
	go func() {
		defer close(jobs)
		for _, c := range cs {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			default:
			}

			select {
			case jobs <- c.Name:
				dispatched.Add(1)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for _, w := range s.workers {
		wg.Add(1)
		go func(w pipeline.Worker) {
			defer wg.Done()
			for name := range jobs {
				outcomes <- s.process(ctx, w, name)
			}
		}(w)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	res := Result{Statuses: make([]status.VerifyStatus, 0, len(cs))}
	var runErr error
	var triggered bool
	for out := range outcomes {
		if runErr != nil || triggered {
			s.logger.Debugf("Discarding result of case %s", out.Case)
			continue
		}

		if out.Err != nil {
			runErr = fmt.Errorf("case %s: %w", out.Case, out.Err)
			requestStop()
			continue
		}

		if s.failFast && !out.Status.Passed() {
			s.logger.Infof("Stopping after case %s: %s", out.Case, out.Status.Outcome)
			triggered = true
			requestStop()
		}

		res.Statuses = append(res.Statuses, out.Status)
		onStatus(out.Status)
	}

	res.Executed = int(dispatched.Load())
	res.Stopped = triggered && len(res.Statuses) < len(cs)
	if runErr != nil {
		return res, runErr
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (s *scheduler) process(ctx context.Context, w pipeline.Worker, name string) pipeline.Outcome {
	s.markWorkerAsBusy(w)
	defer s.markWorkerAsIdle(w)

	return w.ProcessCase(ctx, name)
}

func (s *scheduler) markWorkerAsBusy(worker pipeline.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	worker.UpdateStatus(constants.WorkerStatusBusy)
	s.busyWorkersCount++
}

func (s *scheduler) markWorkerAsIdle(worker pipeline.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	worker.UpdateStatus(constants.WorkerStatusIdle)
	s.busyWorkersCount--
}
