// Package forum holds the vote engine, feed reader and post/reply
// lifecycle of the forum, independent of transport and storage.
package forum

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/alpost/backend/pkg/logging"
	"github.com/alpost/backend/pkg/retry"
	"github.com/alpost/backend/pkg/telemetry"
)

// Service implements the forum operations on top of a Store.
type Service struct {
	store    Store
	policy   retry.Policy
	validate *validator.Validate
	votes    metric.Int64Counter
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRetryPolicy overrides the policy used for vote and delete transactions.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// NewService creates a forum service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		policy:   retry.Once,
		validate: newValidator(),
		logger:   logging.WithComponent("forum"),
	}
	for _, opt := range opts {
		opt(s)
	}

	votes, err := telemetry.Meter().Int64Counter("forum.votes",
		metric.WithDescription("Votes applied, by entity kind and transition branch"))
	if err != nil {
		s.logger.Warn("Failed to create vote counter", zap.Error(err))
		votes = noop.Int64Counter{}
	}
	s.votes = votes

	if s.policy.OnRetry == nil {
		s.policy.OnRetry = func(attempt int, err error, _ time.Duration) {
			s.logger.Debug("Retrying transaction", zap.Int("attempt", attempt), zap.Error(err))
		}
	}
	return s
}

// classify retries only conflicts the store marked as transient.
func classify(err error) retry.Action {
	if errors.Is(err, ErrConflict) {
		return retry.Retry
	}
	return retry.Stop
}
