package brokerjob

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hangfire-go/corekit/pkg/jobperform"
	"github.com/hangfire-go/corekit/pkg/observability"
	"github.com/hangfire-go/corekit/pkg/observability/noop"
)

// Producer publishes jobs onto the queue a Process consumes from.
type Producer struct {
	channel *amqp.Channel
	queue   string
	o11y    observability.Observability
}

// NewProducer builds a Producer bound to an already-open AMQP channel.
// o11y may be nil; a noop facade is substituted.
func NewProducer(channel *amqp.Channel, queue string, o11y observability.Observability) (*Producer, error) {
	if channel == nil {
		return nil, &DispatchError{Op: "new_producer", Message: "channel is required"}
	}
	if queue == "" {
		return nil, &DispatchError{Op: "new_producer", Message: "queue is required"}
	}
	if o11y == nil {
		o11y = noop.NewProvider()
	}
	return &Producer{channel: channel, queue: queue, o11y: o11y}, nil
}

// Enqueue publishes job, assigning it a fresh BackgroundJobID, and
// returns that ID.
func (p *Producer) Enqueue(ctx context.Context, job jobperform.Job) (string, error) {
	ctx, span := p.o11y.Tracer().Start(ctx, "brokerjob.Enqueue",
		observability.WithSpanKind(observability.SpanKindProducer),
		observability.WithAttributes(
			observability.String("queue", p.queue),
			observability.String("job_type", job.Type),
			observability.String("job_method", job.Method),
		),
	)
	defer span.End()

	backgroundJobID, err := jobperform.NewBackgroundJobID()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusCodeError, "failed to generate background job id")
		return "", &DispatchError{Op: "enqueue", Message: "failed to generate background job id", Err: err}
	}
	span.SetAttributes(observability.String("background_job_id", backgroundJobID))

	body, err := json.Marshal(payload{
		BackgroundJobID: backgroundJobID,
		Type:            job.Type,
		Method:          job.Method,
		Args:            job.Args,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusCodeError, "failed to encode payload")
		return "", &DispatchError{Op: "enqueue", Message: "failed to encode payload", Err: err}
	}

	publishing := amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Headers: amqp.Table{
			"x-publisher-id": uuid.NewString(),
		},
	}

	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, publishing); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusCodeError, "publish failed")
		return "", &DispatchError{Op: "enqueue", Message: "publish failed", Err: err}
	}

	span.SetStatus(observability.StatusCodeOK, "")
	return backgroundJobID, nil
}
