package forum

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/alpost/backend/pkg/logging"
	"github.com/alpost/backend/pkg/retry"
	"github.com/alpost/backend/pkg/telemetry"
)

// Vote applies userID's vote to a post or reply. The ledger read, ledger
// write and aggregate update run in one transaction with the ledger row
// locked, so concurrent votes by the same user serialize. A transient
// conflict is retried once before surfacing ErrTransactionFailed.
//
// Vote reports true whenever it does not fail, including when the vote was
// already in place and nothing changed.
func (s *Service) Vote(ctx context.Context, kind Kind, targetID, userID int64, requested int) (bool, error) {
	if userID <= 0 {
		return false, ErrUnauthenticated
	}
	if !kind.Valid() {
		return false, invalid("kind", "unknown entity kind")
	}

	ctx, span := telemetry.StartSpan(ctx, "forum.vote")
	defer span.End()
	span.SetAttributes(
		attribute.String("kind", kind.String()),
		attribute.Int64("target_id", targetID),
	)

	step, err := retry.Do(ctx, s.policy, classify, func() (Step, error) {
		var step Step
		err := s.store.WithinTx(ctx, func(tx Tx) error {
			exists, err := tx.TargetExists(ctx, kind, targetID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}

			existing, err := tx.LockVote(ctx, kind, userID, targetID)
			if err != nil {
				return err
			}

			step = Transition(existing, requested)
			switch step.Write {
			case WriteNone:
				return nil
			case WriteInsert:
				err = tx.InsertVote(ctx, kind, userID, targetID, step.Value)
			case WriteUpdate:
				err = tx.SetVote(ctx, kind, userID, targetID, step.Value)
			}
			if err != nil {
				return err
			}
			return tx.AddPoints(ctx, kind, targetID, step.Delta)
		})
		return step, err
	})
	if err != nil {
		err = storeFailure(err)
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logging.FromContext(ctx).Error("Vote failed",
				zap.Stringer("kind", kind),
				zap.Int64("target_id", targetID),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
		return false, err
	}

	s.votes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("branch", string(step.Branch)),
	))
	span.SetAttributes(attribute.String("branch", string(step.Branch)), attribute.Int("delta", step.Delta))

	return true, nil
}
