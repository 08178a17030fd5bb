package brokerjob

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hangfire-go/corekit/pkg/bgserver"
	"github.com/hangfire-go/corekit/pkg/jobperform"
	"github.com/hangfire-go/corekit/pkg/observability"
	"github.com/hangfire-go/corekit/pkg/observability/noop"
)

// Dispatcher runs a PerformContext through the job-filter pipeline. A
// *jobperform.JobPerformer satisfies this.
type Dispatcher interface {
	PerformAsync(ctx context.Context, pctx *jobperform.PerformContext) (any, error)
}

// ConnectionFactory builds the opaque storage handle passed to each
// dispatched job. It is called once per delivery.
type ConnectionFactory func() (jobperform.Connection, error)

// payload is the wire format of a delivery body: a JSON-encoded Job
// plus the background job ID it was enqueued under.
type payload struct {
	BackgroundJobID string          `json:"background_job_id"`
	Type            string          `json:"type"`
	Method          string          `json:"method"`
	Args            json.RawMessage `json:"args"`
}

// Process is a bgserver.AsyncProcess that consumes a queue and
// dispatches each delivery into the job-filter pipeline.
type Process struct {
	name        string
	channel     *amqp.Channel
	config      *Config
	dispatcher  Dispatcher
	connFactory ConnectionFactory
	o11y        observability.Observability
}

var _ bgserver.AsyncProcess = (*Process)(nil)

// New builds a Process bound to an already-open AMQP channel.
func New(channel *amqp.Channel, dispatcher Dispatcher, connFactory ConnectionFactory, o11y observability.Observability, queue string, opts ...Option) (*Process, error) {
	if channel == nil {
		return nil, &DispatchError{Op: "new", Message: "channel is required"}
	}
	if dispatcher == nil {
		return nil, &DispatchError{Op: "new", Message: "dispatcher is required"}
	}

	cfg := DefaultConfig(queue)
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Suffix the consumer tag with a UUID so multiple Process instances
	// consuming the same queue never collide on the broker.
	cfg.Name = fmt.Sprintf("%s-%s", cfg.Name, uuid.NewString())

	if o11y == nil {
		o11y = noop.NewProvider()
	}

	return &Process{
		name:        fmt.Sprintf("brokerjob:%s", cfg.Queue),
		channel:     channel,
		config:      cfg,
		dispatcher:  dispatcher,
		connFactory: connFactory,
		o11y:        o11y,
	}, nil
}

// Name identifies this process for bgserver's dispatcher logging.
func (p *Process) Name() string { return p.name }

// ExecuteAsync consumes the configured queue until ctx is canceled,
// dispatching each delivery into the job-filter pipeline and
// acknowledging or rejecting it based on the outcome.
func (p *Process) ExecuteAsync(ctx context.Context) error {
	if err := p.channel.Qos(p.config.Prefetch, 0, false); err != nil {
		return &DispatchError{Op: "execute", Message: "failed to set qos", Err: err}
	}

	deliveries, err := p.channel.Consume(
		p.config.Queue,
		p.config.Name,
		p.config.AutoAck,
		p.config.Exclusive,
		p.config.NoLocal,
		p.config.NoWait,
		nil,
	)
	if err != nil {
		return &DispatchError{Op: "execute", Message: "failed to start consuming", Err: err}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrConsumerClosed
			}
			p.handle(ctx, delivery)
		}
	}
}

func (p *Process) handle(ctx context.Context, delivery amqp.Delivery) {
	ctx, span := p.o11y.Tracer().Start(ctx, "brokerjob.handle",
		observability.WithSpanKind(observability.SpanKindConsumer),
		observability.WithAttributes(observability.String("queue", p.config.Queue)),
	)
	defer span.End()

	job, backgroundJobID, err := decodePayload(delivery.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusCodeError, "decode failed")
		p.logError(ctx, "decode failed", err)
		p.reject(delivery, false)
		return
	}
	span.SetAttributes(observability.String("background_job_id", backgroundJobID), observability.String("job_type", job.Type))

	var conn jobperform.Connection
	if p.connFactory != nil {
		conn, err = p.connFactory()
		if err != nil {
			p.logError(ctx, "connection factory failed", err)
			p.reject(delivery, true)
			return
		}
		defer conn.Close()
	}

	pctx := &jobperform.PerformContext{
		Job:             job,
		Connection:      conn,
		BackgroundJobID: backgroundJobID,
		Cancellation:    jobperform.NewCancellationToken(ctx, ctx),
	}

	if _, err := p.dispatcher.PerformAsync(ctx, pctx); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusCodeError, "job dispatch failed")
		p.logError(ctx, "job dispatch failed", err)
		p.reject(delivery, true)
		return
	}

	if !p.config.AutoAck {
		if err := delivery.Ack(false); err != nil {
			span.RecordError(err)
			p.logError(ctx, "ack failed", err)
		}
	}

	span.SetStatus(observability.StatusCodeOK, "")
}

func decodePayload(body []byte) (jobperform.Job, string, error) {
	var pl payload
	if err := json.Unmarshal(body, &pl); err != nil {
		return jobperform.Job{}, "", &DispatchError{Op: "decode", Message: "invalid payload", Err: err}
	}
	return jobperform.Job{Type: pl.Type, Method: pl.Method, Args: pl.Args}, pl.BackgroundJobID, nil
}

func (p *Process) reject(delivery amqp.Delivery, requeue bool) {
	if p.config.AutoAck {
		return
	}
	if err := delivery.Nack(false, requeue); err != nil {
		p.logError(context.Background(), "nack failed", err)
	}
}

func (p *Process) logError(ctx context.Context, msg string, err error) {
	p.o11y.Logger().Error(ctx, msg,
		observability.String("process", p.name),
		observability.Error(err),
	)
}
