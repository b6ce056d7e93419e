package responder

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/internal/rabbitmq/channel"
	"github.com/mini-maxit/taucheck/pkg/constants"
	"github.com/mini-maxit/taucheck/pkg/errors"
	"github.com/mini-maxit/taucheck/pkg/messages"
	"github.com/mini-maxit/taucheck/pkg/status"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Responder publishes the results of one run to a queue. Messages are
// published in the order they were submitted, from a single goroutine.
type Responder interface {
	PublishStatus(st status.VerifyStatus) error
	PublishSummary(summary status.Summary) error
	RunID() string
	// Close flushes pending messages and reports the first publish failure.
	Close() error
}

type responder struct {
	logger      *zap.SugaredLogger
	channel     channel.Channel
	queueName   string
	runID       string
	publishChan chan amqp.Publishing
	done        chan struct{}

	mu     sync.Mutex
	closed bool

	errMu      sync.Mutex
	publishErr error
}

// NewResponder declares queueName as a durable queue and starts the publishing goroutine.
func NewResponder(ch channel.Channel, queueName string, publishChanSize int) (Responder, error) {
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, err
	}

	r := &responder{
		logger:      logger.NewNamedLogger("responder"),
		channel:     ch,
		queueName:   queueName,
		runID:       uuid.NewString(),
		publishChan: make(chan amqp.Publishing, publishChanSize),
		done:        make(chan struct{}),
	}
	go r.publishLoop()

	return r, nil
}

func (r *responder) RunID() string {
	return r.runID
}

func (r *responder) PublishStatus(st status.VerifyStatus) error {
	return r.publish(constants.QueueMessageTypeStatus, st)
}

func (r *responder) PublishSummary(summary status.Summary) error {
	return r.publish(constants.QueueMessageTypeSummary, summary)
}

func (r *responder) publish(messageType string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	body, err := json.Marshal(messages.ResultQueueMessage{
		Type:    messageType,
		RunID:   r.runID,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.ErrPublisherClosed
	}

	r.publishChan <- amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: r.runID,
		Type:          messageType,
		Body:          body,
	}
	return nil
}

func (r *responder) publishLoop() {
	defer close(r.done)

	for msg := range r.publishChan {
		if err := r.channel.Publish("", r.queueName, false, false, msg); err != nil {
			r.logger.Errorf("Failed to publish %s message: %s", msg.Type, err)
			r.recordError(err)
			continue
		}
		r.logger.Debugf("Published %s message to %s", msg.Type, r.queueName)
	}
}

func (r *responder) recordError(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.publishErr == nil {
		r.publishErr = err
	}
}

func (r *responder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.ErrPublisherClosed
	}
	r.closed = true
	close(r.publishChan)
	r.mu.Unlock()

	<-r.done

	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.publishErr
}
