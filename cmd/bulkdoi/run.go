package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"bulk-doi/internal/batch"
	"bulk-doi/internal/common/aws"
	"bulk-doi/internal/common/config"
	"bulk-doi/internal/common/database"
	"bulk-doi/internal/common/datacite"
	"bulk-doi/internal/common/errors"
	"bulk-doi/internal/common/logger"
	"bulk-doi/internal/common/metrics"
	allocateidentifier "bulk-doi/internal/workers/doi/allocate-identifier"
	createdoi "bulk-doi/internal/workers/doi/create-doi"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	startupRetries = 3
	notifyTimeout  = 15 * time.Second
)

var startupRetryDelay = time.Second

func run(ctx context.Context, opts *options, csvPath string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	zapLog, err := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	defer zapLog.Sync()

	runID := uuid.NewString()
	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{"runId": runID})

	settings, err := cfg.Settings(opts.live)
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}

	log.Info("Starting bulk DOI run", map[string]interface{}{
		"input":  csvPath,
		"submit": opts.submit,
		"live":   opts.live,
		"prefix": settings.Prefix,
		"api":    settings.URL,
	})
	if opts.publish {
		log.Warn("Publishing is enabled, published DOIs cannot be deleted", map[string]interface{}{
			"live": opts.live,
		})
	}

	client := datacite.NewClient(settings)
	if opts.submit {
		err := retryWithBackoff(ctx, func() error { return client.Ping(ctx) },
			startupRetries, startupRetryDelay, log, "DataCite heartbeat")
		if err != nil {
			return errors.NewDataciteUnavailableError("heartbeat", err)
		}
	}

	ledger, closeLedger, err := newLedger(ctx, cfg.Ledger, runID, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	allocator := allocateidentifier.NewAllocator(allocateidentifier.AllocatorOptions{
		Prefix:      settings.Prefix,
		Registry:    client,
		Ledger:      ledger,
		MaxAttempts: cfg.Allocator.MaxAttempts,
		Logger:      log,
	})
	service := createdoi.NewService(createdoi.ServiceDependencies{
		Logger:    log,
		Allocator: allocator,
		Registrar: client,
	}, createdoi.DefaultConfig())
	runner := batch.NewRunner(batch.RunnerDependencies{
		Logger:    log,
		Submitter: service,
	}, createdoi.SubmitOptions{Submit: opts.submit, Publish: opts.publish})

	f, err := os.Open(csvPath)
	if err != nil {
		return errors.NewCSVReadFailedError(err)
	}
	defer f.Close()

	summary, runErr := runner.Run(ctx, f, stdout)
	summary.RunID = runID
	summary.Live = opts.live

	if stdErr := errors.AsStandardError(runErr); stdErr == nil || !errors.IsBatchFatal(stdErr.Code) {
		renderSummary(stderr, summary)
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			log.Error("Failed to write metrics file", map[string]interface{}{
				"path":  opts.metricsFile,
				"error": err.Error(),
			})
		}
	}

	if opts.notify {
		notifiers, err := newNotifiers(ctx, cfg.Notifications)
		if err != nil {
			log.Error("Failed to set up notifications", map[string]interface{}{"error": err.Error()})
		} else {
			notifyAll(notifiers, summary, runErr, log)
		}
	}

	return runErr
}

// newLedger returns the Redis ledger when an address is configured and the
// in-process ledger otherwise.
func newLedger(ctx context.Context, cfg config.LedgerConfig, runID string, log logger.Logger) (allocateidentifier.Ledger, func(), error) {
	if cfg.Redis.Address == "" {
		return allocateidentifier.NewMemoryLedger(), func() {}, nil
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		return nil, nil, errors.NewConfigInvalidError(err.Error())
	}
	err = retryWithBackoff(ctx, func() error { return rdb.Ping(ctx) },
		startupRetries, startupRetryDelay, log, "Redis connection")
	if err != nil {
		_ = rdb.Close()
		return nil, nil, errors.NewLedgerUnavailableError(err)
	}
	log.Info("Reserving identifiers in Redis", map[string]interface{}{
		"address":   cfg.Redis.Address,
		"keyPrefix": cfg.Redis.KeyPrefix,
	})

	ledger := allocateidentifier.NewRedisLedger(rdb, cfg.Redis.KeyPrefix, config.GetDuration(cfg.Redis.TTL), runID)
	return ledger, func() { _ = rdb.Close() }, nil
}

func newNotifiers(ctx context.Context, cfg config.NotificationConfig) ([]aws.Notifier, error) {
	var notifiers []aws.Notifier
	if cfg.SNS.TopicARN != "" {
		client, err := aws.NewSNSClient(ctx, cfg.SNS.Region, cfg.SNS.TopicARN)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, client)
	}
	if cfg.SES.From != "" {
		client, err := aws.NewSESClient(ctx, cfg.SES.Region, cfg.SES.From, cfg.SES.To)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, client)
	}
	return notifiers, nil
}

// notifyAll sends the summary to every channel. Failures are logged only;
// the run result does not depend on them.
func notifyAll(notifiers []aws.Notifier, summary *batch.Summary, runErr error, log logger.Logger) {
	if len(notifiers) == 0 {
		log.Warn("--notify set but no notification channel is configured", nil)
		return
	}

	subject := fmt.Sprintf("bulkdoi run %s: %d records, %d failed, %d rejected",
		summary.RunID, summary.Total, summary.Failed, summary.Rejected)
	message := struct {
		*batch.Summary
		Error string `json:"error,omitempty"`
	}{Summary: summary}
	if runErr != nil {
		message.Error = runErr.Error()
	}
	body, err := json.Marshal(message)
	if err != nil {
		log.Error("Failed to encode summary", map[string]interface{}{"error": err.Error()})
		return
	}

	// the run context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	for _, n := range notifiers {
		if err := n.Notify(ctx, subject, string(body)); err != nil {
			stdErr := errors.NewNotificationSendFailedError(n.Channel(), err)
			log.Error("Failed to send summary", map[string]interface{}{
				"channel":   n.Channel(),
				"errorCode": string(stdErr.Code),
				"error":     stdErr.Details,
			})
			continue
		}
		log.Info("Summary sent", map[string]interface{}{"channel": n.Channel()})
	}
}

func renderSummary(w io.Writer, s *batch.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Total", "Rejected", "Dry run", "Created", "Published", "Failed"})
	t.AppendRow(table.Row{s.Total, s.Rejected, s.DryRun, s.Created, s.Published, s.Failed})
	t.Render()
}
