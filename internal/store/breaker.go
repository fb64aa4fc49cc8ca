package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/schema"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker/v2"
)

// statsWindow is how often the closed breaker resets its failure counts.
const statsWindow = time.Minute

// ErrStoreUnavailable is returned without calling the store while the breaker is open.
var ErrStoreUnavailable = errors.New("product store unavailable")

var _ ProductStore = (*BreakerStore)(nil)

// BreakerStore wraps a ProductStore in a circuit breaker. Every call is a single
// attempt; a missing product, a bad cursor or a request DynamoDB rejects as
// malformed never counts as a failure.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore decorates next with a breaker configured from cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "product-store",
		MaxRequests: cfg.MaxHalfOpenRequests,
		Interval:    statsWindow,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if counts.Requests < cfg.ConsecutiveFailures {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, catalogerrors.ErrProductNotFound) ||
				errors.Is(err, catalogerrors.ErrInvalidCursor) ||
				errors.Is(err, context.Canceled) ||
				isValidationError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

// isValidationError reports whether DynamoDB rejected the request itself.
// Those are caller errors and say nothing about the health of the table.
func isValidationError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException"
}

// execute runs fn through the breaker and restores its concrete result type.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	res, err := cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

// State exposes the breaker state for health reporting.
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) FetchByID(ctx context.Context, id string) (*schema.Product, error) {
	return execute(s.cb, func() (*schema.Product, error) {
		return s.next.FetchByID(ctx, id)
	})
}

func (s *BreakerStore) ScanAll(ctx context.Context) ([]schema.Product, error) {
	return execute(s.cb, func() ([]schema.Product, error) {
		return s.next.ScanAll(ctx)
	})
}

type page struct {
	products []schema.Product
	next     string
}

func (s *BreakerStore) ScanPage(ctx context.Context, cursor string, limit int32) ([]schema.Product, string, error) {
	p, err := execute(s.cb, func() (page, error) {
		products, next, err := s.next.ScanPage(ctx, cursor, limit)
		return page{products: products, next: next}, err
	})
	if err != nil {
		return nil, "", err
	}
	return p.products, p.next, nil
}

func (s *BreakerStore) Insert(ctx context.Context, product schema.Product) (*schema.Product, error) {
	return execute(s.cb, func() (*schema.Product, error) {
		return s.next.Insert(ctx, product)
	})
}

func (s *BreakerStore) MergeUpdate(ctx context.Context, id string, patch schema.ProductPatch) (*schema.Product, error) {
	return execute(s.cb, func() (*schema.Product, error) {
		return s.next.MergeUpdate(ctx, id, patch)
	})
}

func (s *BreakerStore) Remove(ctx context.Context, id string) error {
	_, err := execute(s.cb, func() (struct{}, error) {
		return struct{}{}, s.next.Remove(ctx, id)
	})
	return err
}

// Ping bypasses the breaker so health checks see the real backend state.
func (s *BreakerStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
