package responder_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/mock/gomock"

	"github.com/mini-maxit/taucheck/tests/mocks"

	. "github.com/mini-maxit/taucheck/internal/rabbitmq/responder"
	"github.com/mini-maxit/taucheck/pkg/constants"
	pkgerrors "github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/pkg/messages"
	"github.com/mini-maxit/taucheck/pkg/status"
)

const queueName = "results"

func newResponder(t *testing.T, mockCh *mocks.MockChannel, size int) Responder {
	t.Helper()
	mockCh.EXPECT().QueueDeclare(queueName, true, false, false, false, nil).Return(amqp.Queue{Name: queueName}, nil).Times(1)

	r, err := NewResponder(mockCh, queueName, size)
	if err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}
	return r
}

func decode(t *testing.T, pub amqp.Publishing) messages.ResultQueueMessage {
	t.Helper()
	var msg messages.ResultQueueMessage
	if err := json.Unmarshal(pub.Body, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	return msg
}

func TestPublishStatusAndSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCh := mocks.NewMockChannel(ctrl)
	r := newResponder(t, mockCh, 10)

	st := status.VerifyStatus{
		Outcome: status.Fail,
		Elapsed: time.Second,
		Case:    "4",
		Meta:    status.Metadata{ExitCode: status.IntPtr(0), Diff: "replace"},
	}
	summary := status.Summarize([]status.VerifyStatus{st}, 2*time.Second, false)

	gomock.InOrder(
		mockCh.EXPECT().Publish("", queueName, false, false, gomock.AssignableToTypeOf(amqp.Publishing{})).Do(
			func(_ string, _ string, _ bool, _ bool, pub amqp.Publishing) {
				msg := decode(t, pub)
				if msg.Type != constants.QueueMessageTypeStatus {
					t.Fatalf("expected type %s got %s", constants.QueueMessageTypeStatus, msg.Type)
				}
				if msg.RunID != r.RunID() || pub.CorrelationId != r.RunID() {
					t.Fatalf("expected run id %s on message, got %s / %s", r.RunID(), msg.RunID, pub.CorrelationId)
				}
				var got status.VerifyStatus
				if err := json.Unmarshal(msg.Payload, &got); err != nil {
					t.Fatalf("failed to unmarshal payload: %v", err)
				}
				if got.Case != "4" || got.Outcome != status.Fail || got.Meta.Diff != "replace" {
					t.Fatalf("unexpected status payload %+v", got)
				}
			}).Return(nil),
		mockCh.EXPECT().Publish("", queueName, false, false, gomock.AssignableToTypeOf(amqp.Publishing{})).Do(
			func(_ string, _ string, _ bool, _ bool, pub amqp.Publishing) {
				msg := decode(t, pub)
				if msg.Type != constants.QueueMessageTypeSummary {
					t.Fatalf("expected type %s got %s", constants.QueueMessageTypeSummary, msg.Type)
				}
				var got status.Summary
				if err := json.Unmarshal(msg.Payload, &got); err != nil {
					t.Fatalf("failed to unmarshal payload: %v", err)
				}
				if got.Total != 1 || got.Accepted {
					t.Fatalf("unexpected summary payload %+v", got)
				}
			}).Return(nil),
	)

	if err := r.PublishStatus(st); err != nil {
		t.Fatalf("PublishStatus() error = %v", err)
	}
	if err := r.PublishSummary(summary); err != nil {
		t.Fatalf("PublishSummary() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestNewResponder_DeclareFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCh := mocks.NewMockChannel(ctrl)
	declareErr := errors.New("access refused")
	mockCh.EXPECT().QueueDeclare(queueName, true, false, false, false, nil).Return(amqp.Queue{}, declareErr).Times(1)

	if _, err := NewResponder(mockCh, queueName, 1); !errors.Is(err, declareErr) {
		t.Fatalf("expected declare error, got %v", err)
	}
}

func TestClose_ReportsPublishError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCh := mocks.NewMockChannel(ctrl)
	r := newResponder(t, mockCh, 1)

	publishErr := errors.New("channel closed")
	mockCh.EXPECT().Publish("", queueName, false, false, gomock.Any()).Return(publishErr).Times(2)

	for i := 0; i < 2; i++ {
		if err := r.PublishStatus(status.VerifyStatus{Outcome: status.Pass, Case: fmt.Sprint(i)}); err != nil {
			t.Fatalf("PublishStatus() error = %v", err)
		}
	}

	if err := r.Close(); !errors.Is(err, publishErr) {
		t.Fatalf("expected publish error from Close, got %v", err)
	}
	if err := r.PublishStatus(status.VerifyStatus{}); !errors.Is(err, pkgerrors.ErrPublisherClosed) {
		t.Fatalf("expected ErrPublisherClosed after Close, got %v", err)
	}
	if err := r.Close(); !errors.Is(err, pkgerrors.ErrPublisherClosed) {
		t.Fatalf("expected ErrPublisherClosed on second Close, got %v", err)
	}
}

// Test concurrent heavy load of Publish calls.
func TestPublish_ConcurrentHighLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCh := mocks.NewMockChannel(ctrl)
	r := newResponder(t, mockCh, 16)

	const n = 200

	var mu sync.Mutex
	received := make(map[string]struct{})
	mockCh.EXPECT().Publish("", queueName, false, false, gomock.AssignableToTypeOf(amqp.Publishing{})).Do(
		func(_ string, _ string, _ bool, _ bool, pub amqp.Publishing) {
			var got status.VerifyStatus
			if err := json.Unmarshal(decode(t, pub).Payload, &got); err != nil {
				t.Errorf("failed to unmarshal payload: %v", err)
				return
			}
			mu.Lock()
			received[got.Case] = struct{}{}
			mu.Unlock()
		}).Return(nil).Times(n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			if err := r.PublishStatus(status.VerifyStatus{Outcome: status.Pass, Case: fmt.Sprintf("c-%d", i)}); err != nil {
				t.Errorf("PublishStatus returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != n {
		t.Fatalf("expected %d distinct messages, got %d", n, len(received))
	}
}
