// Command jobserver is the composition root: it wires storage, a
// broker-backed job process, the job-filter pipeline, the processing
// server, and the health probe surface together, then runs until an OS
// signal requests shutdown.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hangfire-go/corekit/pkg/bgserver"
	"github.com/hangfire-go/corekit/pkg/brokerjob"
	"github.com/hangfire-go/corekit/pkg/healthapi"
	"github.com/hangfire-go/corekit/pkg/jobperform"
	"github.com/hangfire-go/corekit/pkg/observability"
	"github.com/hangfire-go/corekit/pkg/observability/otel"
	"github.com/hangfire-go/corekit/pkg/observability/zaplog"
	"github.com/hangfire-go/corekit/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	cfg := otel.DefaultConfig("jobserver")
	cfg.WorkerRole = "consumer"
	provider, err := otel.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Shutdown(context.Background())

	var o11y observability.Observability = provider

	// JOBSERVER_LOG_BACKEND=zap routes structured console logging through
	// zap instead of the OTLP log bridge, keeping traces/metrics on OTel.
	if os.Getenv("JOBSERVER_LOG_BACKEND") == "zap" {
		zl, err := zaplog.NewProduction("jobserver")
		if err != nil {
			return err
		}
		o11y = observability.WithLogger(o11y, zl)
	}

	storageDSN := os.Getenv("JOBSERVER_STORAGE_DSN")
	amqpURL := os.Getenv("JOBSERVER_AMQP_URL")
	queue := os.Getenv("JOBSERVER_QUEUE")
	if queue == "" {
		queue = "jobserver.jobs"
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	performer := jobperform.NewJobPerformer(&activationPerformer{}, jobperform.StaticFilterProvider{}, o11y)

	connFactory := func() (jobperform.Connection, error) {
		return storage.Open(ctx, storageDSN)
	}

	process, err := brokerjob.New(channel, performer, connFactory, o11y, queue)
	if err != nil {
		return err
	}

	server, err := bgserver.New(o11y, []bgserver.BackgroundProcess{process})
	if err != nil {
		return err
	}

	healthSrv, err := healthapi.New(server, o11y)
	if err != nil {
		return err
	}
	healthSrv.Start()

	o11y.Logger().Info(ctx, "jobserver started", observability.String("queue", queue))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	o11y.Logger().Info(ctx, "shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)
	return server.Dispose(shutdownCtx)
}

// activationPerformer is the innermost Performer: a placeholder job
// body activator. A real deployment replaces this with one that routes
// Job.Type/Job.Method to a registered handler and unmarshals Job.Args
// into its parameters.
type activationPerformer struct{}

func (activationPerformer) PerformAsync(ctx context.Context, pctx *jobperform.PerformContext) (any, error) {
	return nil, errUnregisteredActivator(pctx.Job.Type)
}

func errUnregisteredActivator(jobType string) error {
	return &activationError{jobType: jobType}
}

type activationError struct{ jobType string }

func (e *activationError) Error() string {
	return "jobserver: no activator registered for " + e.jobType
}
