package allocateidentifier

import (
	"context"

	"bulk-doi/internal/common/errors"
	"bulk-doi/internal/common/logger"
	"bulk-doi/internal/common/metrics"
)

// DefaultMaxAttempts bounds the number of candidates drawn per identifier.
// With 30^8 possible suffixes, running out is an operational anomaly.
const DefaultMaxAttempts = 10

// Registry is the part of the registration service the allocator needs.
type Registry interface {
	Exists(ctx context.Context, doi string) (bool, error)
}

// Allocator hands out identifiers of the form prefix/suffix that are
// neither registered nor already issued.
type Allocator struct {
	prefix      string
	suffixes    *SuffixGenerator
	registry    Registry
	ledger      Ledger
	maxAttempts int
	logger      logger.Logger
	issued      map[string]struct{}
}

type AllocatorOptions struct {
	Prefix      string
	Suffixes    *SuffixGenerator
	Registry    Registry
	Ledger      Ledger
	MaxAttempts int
	Logger      logger.Logger
}

func NewAllocator(opts AllocatorOptions) *Allocator {
	if opts.Suffixes == nil {
		opts.Suffixes = NewSuffixGenerator(nil)
	}
	if opts.Ledger == nil {
		opts.Ledger = NewMemoryLedger()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	return &Allocator{
		prefix:      opts.Prefix,
		suffixes:    opts.Suffixes,
		registry:    opts.Registry,
		ledger:      opts.Ledger,
		maxAttempts: opts.MaxAttempts,
		logger:      opts.Logger,
		issued:      make(map[string]struct{}),
	}
}

// Prefix returns the DOI prefix identifiers are allocated under.
func (a *Allocator) Prefix() string {
	return a.prefix
}

// Next returns an identifier that has never been issued by this allocator,
// is not registered and is now reserved in the ledger. Registry and ledger
// failures are returned as is; the candidate that caused them is dropped.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	attempts := 0
	for suffix := range a.suffixes.All() {
		if attempts == a.maxAttempts {
			break
		}
		attempts++
		metrics.AllocationAttempts.Inc()

		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := a.prefix + "/" + suffix

		if _, seen := a.issued[candidate]; seen {
			a.collision(candidate, "batch", attempts)
			continue
		}

		exists, err := a.registry.Exists(ctx, candidate)
		if err != nil {
			return "", errors.NewDataciteUnavailableError("exists", err).WithMetadata("doi", candidate)
		}
		if exists {
			a.collision(candidate, "registered", attempts)
			continue
		}

		reserved, err := a.ledger.Reserve(ctx, candidate)
		if err != nil {
			return "", errors.NewLedgerUnavailableError(err).WithMetadata("doi", candidate)
		}
		if !reserved {
			a.collision(candidate, "ledger", attempts)
			continue
		}

		a.issued[candidate] = struct{}{}
		a.logger.Debug("Identifier allocated", map[string]interface{}{
			"doi":      candidate,
			"attempts": attempts,
		})
		return candidate, nil
	}

	a.logger.Error("Identifier allocation exhausted", map[string]interface{}{
		"prefix":   a.prefix,
		"attempts": attempts,
	})
	return "", errors.NewAllocationExhaustedError(a.prefix, attempts)
}

func (a *Allocator) collision(candidate, source string, attempt int) {
	metrics.AllocationCollisions.WithLabelValues(source).Inc()
	a.logger.Warn("Identifier candidate already taken, drawing again", map[string]interface{}{
		"doi":     candidate,
		"source":  source,
		"attempt": attempt,
	})
}
