package batch

import (
	"context"
	"fmt"
	"io"

	"bulk-doi/internal/common/errors"
	"bulk-doi/internal/common/logger"
	"bulk-doi/internal/common/metrics"
	createdoi "bulk-doi/internal/workers/doi/create-doi"
	validaterecord "bulk-doi/internal/workers/doi/validate-record"
)

// Submitter turns a validated record into an Outcome.
type Submitter interface {
	Submit(ctx context.Context, rec validaterecord.Record, opts createdoi.SubmitOptions) *createdoi.Outcome
}

type RunnerDependencies struct {
	Logger    logger.Logger
	Submitter Submitter
}

// Runner processes one CSV batch, record by record and in input order.
type Runner struct {
	logger       logger.Logger
	submitter    Submitter
	errorHandler *errors.ErrorHandler
	opts         createdoi.SubmitOptions
}

func NewRunner(deps RunnerDependencies, opts createdoi.SubmitOptions) *Runner {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Runner{
		logger:       deps.Logger,
		submitter:    deps.Submitter,
		errorHandler: errors.NewErrorHandler(deps.Logger),
		opts:         opts,
	}
}

// Run reads the CSV from in and writes one report line per record to out.
// A bad header stops the batch before any record is processed. Record
// failures are reported and the batch moves on. Cancelling ctx stops
// before the next record; the returned Summary covers what was written.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (*Summary, error) {
	summary := &Summary{Submitted: r.opts.Submit}
	reader := NewCSVReader(in)

	header, err := reader.Read()
	if err != nil && err != io.EOF {
		return summary, errors.NewCSVReadFailedError(err)
	}
	if problems := validaterecord.CheckHeader(header); len(problems) > 0 {
		r.logger.Error("CSV header does not match the input schema", map[string]interface{}{
			"problems": problems,
		})
		return summary, errors.NewCSVHeaderInvalidError(problems)
	}
	index := validaterecord.NewHeaderIndex(header)

	for rowNum := 1; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Batch interrupted", map[string]interface{}{
				"nextRow": rowNum,
				"error":   err.Error(),
			})
			return summary, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, errors.NewCSVReadFailedError(err).WithMetadata("row", rowNum)
		}

		if err := r.process(ctx, index.RecordFromRow(rowNum, row), out, summary); err != nil {
			return summary, err
		}
	}

	r.logger.Info("Batch finished", summary.Fields())
	return summary, nil
}

func (r *Runner) process(ctx context.Context, rec validaterecord.Record, w io.Writer, summary *Summary) error {
	result := validaterecord.ValidateRecord(rec)
	if !result.Valid {
		problems := result.GetErrorMessages()
		r.errorHandler.HandleRecordError(rec.Row, "", errors.NewRecordValidationFailedError(problems))
		summary.add(createdoi.StatusRejected, nil)
		metrics.RecordsProcessed.WithLabelValues(string(createdoi.StatusRejected)).Inc()
		if err := writeRejected(w, rec.Row, problems); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	outcome := r.submitter.Submit(ctx, rec, r.opts)
	if outcome.Err != nil {
		r.errorHandler.HandleRecordError(outcome.Row, outcome.DOI, outcome.Err)
	}

	status := outcome.Status()
	summary.add(status, outcome)
	metrics.RecordsProcessed.WithLabelValues(string(status)).Inc()

	if err := writeOutcome(w, outcome); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
