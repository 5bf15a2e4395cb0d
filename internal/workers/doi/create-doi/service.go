package createdoi

import (
	"context"
	stderrors "errors"

	"bulk-doi/internal/common/datacite"
	"bulk-doi/internal/common/errors"
	"bulk-doi/internal/common/logger"
	validaterecord "bulk-doi/internal/workers/doi/validate-record"
)

type Service struct {
	config    *Config
	logger    logger.Logger
	allocator IdentifierAllocator
	registrar Registrar
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Service{
		config:    config,
		logger:    deps.Logger,
		allocator: deps.Allocator,
		registrar: deps.Registrar,
	}
}

// Submit allocates an identifier for rec and, when opts.Submit is set,
// registers it as a draft and optionally publishes it. Failures are
// reported on the Outcome; nothing is rolled back.
func (s *Service) Submit(ctx context.Context, rec validaterecord.Record, opts SubmitOptions) *Outcome {
	out := &Outcome{Row: rec.Row, DryRun: !opts.Submit}

	doi, err := s.allocator.Next(ctx)
	if err != nil {
		out.Err = errors.AsStandardError(err)
		s.logger.Error("Identifier allocation failed", map[string]interface{}{
			"row":   rec.Row,
			"code":  out.Err.Code,
			"error": out.Err.Error(),
		})
		return out
	}
	out.DOI = doi

	payload, err := BuildPayload(doi, rec, s.config.DescriptionType)
	if err != nil {
		out.Err = errors.NewPayloadInvalidError([]string{err.Error()}).WithMetadata("doi", doi)
		return out
	}
	if s.config.ValidatePayload {
		result, err := ValidatePayload(payload)
		if err != nil {
			out.Err = errors.NewPayloadInvalidError([]string{err.Error()}).WithMetadata("doi", doi)
			return out
		}
		if !result.Valid {
			out.Err = errors.NewPayloadInvalidError(result.GetErrorMessages()).WithMetadata("doi", doi)
			return out
		}
	}
	out.Payload = payload

	if !opts.Submit {
		s.logger.Debug("Dry run, DOI not registered", map[string]interface{}{
			"row": rec.Row,
			"doi": doi,
		})
		return out
	}

	if err := s.registrar.Create(ctx, doi, payload); err != nil {
		if stderrors.Is(err, datacite.ErrConflict) {
			out.Err = errors.NewDOIConflictError(doi, err)
		} else {
			out.Err = errors.NewDOICreateFailedError(doi, err)
		}
		return out
	}
	out.Created = true
	s.logger.Info("DOI created", map[string]interface{}{
		"row": rec.Row,
		"doi": doi,
	})

	if !opts.Publish {
		return out
	}

	if err := s.registrar.Publish(ctx, doi); err != nil {
		out.Err = errors.NewDOIPublishFailedError(doi, err)
		return out
	}
	out.Published = true
	s.logger.Info("DOI published", map[string]interface{}{
		"row": rec.Row,
		"doi": doi,
	})

	return out
}
