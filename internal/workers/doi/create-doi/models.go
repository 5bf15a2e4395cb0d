package createdoi

import (
	"context"

	"bulk-doi/internal/common/datacite"
	"bulk-doi/internal/common/errors"
	"bulk-doi/internal/common/logger"
)

// Status summarises an Outcome in the batch report.
type Status string

const (
	StatusRejected         Status = "REJECTED"
	StatusDryRun           Status = "DRY_RUN"
	StatusCreated          Status = "CREATED"
	StatusPublished        Status = "PUBLISHED"
	StatusCreateFailed     Status = "CREATE_FAILED"
	StatusPublishFailed    Status = "PUBLISH_FAILED"
	StatusAllocationFailed Status = "ALLOCATION_FAILED"
	StatusPayloadInvalid   Status = "PAYLOAD_INVALID"
)

type SubmitOptions struct {
	// Submit registers the DOI. Without it the payload is only built.
	Submit bool
	// Publish makes a created DOI findable. It cannot be undone.
	Publish bool
}

// Outcome is the result of submitting one record.
type Outcome struct {
	Row       int
	DOI       string
	DryRun    bool
	Created   bool
	Published bool
	Payload   *datacite.Payload
	Err       *errors.StandardError
}

// Status reports how far the record got. Nothing is sent to DataCite
// before the payload is built, so a failure in a dry run is always an
// allocation or payload failure.
func (o *Outcome) Status() Status {
	switch {
	case o.Err == nil && o.DryRun:
		return StatusDryRun
	case o.Err == nil && o.Published:
		return StatusPublished
	case o.Err == nil:
		return StatusCreated
	case o.DOI == "":
		return StatusAllocationFailed
	case o.Err.Code == errors.ErrCodePayloadInvalid || o.DryRun:
		return StatusPayloadInvalid
	case o.Created:
		return StatusPublishFailed
	default:
		return StatusCreateFailed
	}
}

// IdentifierAllocator hands out fresh identifiers.
type IdentifierAllocator interface {
	Next(ctx context.Context) (string, error)
}

// Registrar is the part of the DataCite client used for submission.
type Registrar interface {
	Create(ctx context.Context, doi string, payload *datacite.Payload) error
	Publish(ctx context.Context, doi string) error
}

type ServiceDependencies struct {
	Logger    logger.Logger
	Allocator IdentifierAllocator
	Registrar Registrar
}
