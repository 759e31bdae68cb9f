package forum

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alpost/backend/internal/models"
	"github.com/alpost/backend/pkg/logging"
	"github.com/alpost/backend/pkg/retry"
	"github.com/alpost/backend/pkg/telemetry"
)

// PostInput carries the user-editable fields of a post.
type PostInput struct {
	Title    string `json:"title" validate:"required,max=300"`
	Text     string `json:"text" validate:"required"`
	Category string `json:"category" validate:"required,max=64"`
}

// ReplyInput carries a new reply.
type ReplyInput struct {
	Text   string `json:"text" validate:"required"`
	PostID int64  `json:"postId" validate:"gt=0"`
}

// ReplyUpdateInput carries the user-editable fields of a reply.
type ReplyUpdateInput struct {
	Text string `json:"text" validate:"required"`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
}

// CreatePost stores a new post owned by creatorID with zero points.
func (s *Service) CreatePost(ctx context.Context, input PostInput, creatorID int64) (*models.Post, error) {
	if creatorID <= 0 {
		return nil, ErrUnauthenticated
	}
	input.normalize()
	if err := s.check(input); err != nil {
		return nil, err
	}
	if strings.EqualFold(input.Category, CategoryAll) {
		return nil, invalid("category", "is reserved")
	}

	post := &models.Post{
		Title:     input.Title,
		Text:      input.Text,
		Category:  input.Category,
		CreatorID: creatorID,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, storeFailure(err)
	}
	return post, nil
}

// CreateReply stores a new reply under an existing post.
func (s *Service) CreateReply(ctx context.Context, input ReplyInput, creatorID int64) (*models.Reply, error) {
	if creatorID <= 0 {
		return nil, ErrUnauthenticated
	}
	if err := s.check(input); err != nil {
		return nil, err
	}

	reply := &models.Reply{
		Text:      input.Text,
		PostID:    input.PostID,
		CreatorID: creatorID,
	}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return nil, storeFailure(err)
	}
	return reply, nil
}

// UpdatePost rewrites a post owned by userID. It returns nil, nil when the
// post does not exist or belongs to someone else; nothing is modified then.
func (s *Service) UpdatePost(ctx context.Context, id int64, input PostInput, userID int64) (*models.Post, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	input.normalize()
	if err := s.check(input); err != nil {
		return nil, err
	}
	if strings.EqualFold(input.Category, CategoryAll) {
		return nil, invalid("category", "is reserved")
	}

	post, err := s.store.UpdatePost(ctx, id, userID, PostFields{
		Title:    input.Title,
		Text:     input.Text,
		Category: input.Category,
	})
	if err != nil {
		return nil, storeFailure(err)
	}
	return post, nil
}

// UpdateReply rewrites a reply owned by userID, with the same silent
// ownership rule as UpdatePost.
func (s *Service) UpdateReply(ctx context.Context, id int64, input ReplyUpdateInput, userID int64) (*models.Reply, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if err := s.check(input); err != nil {
		return nil, err
	}

	reply, err := s.store.UpdateReply(ctx, id, userID, input.Text)
	if err != nil {
		return nil, storeFailure(err)
	}
	return reply, nil
}

// Delete removes a post or reply owned by userID together with its ledger
// rows and, for a post, its replies and their ledger rows. All of it runs in
// one transaction. It reports false without error when the entity does not
// exist.
func (s *Service) Delete(ctx context.Context, kind Kind, id, userID int64) (bool, error) {
	if userID <= 0 {
		return false, ErrUnauthenticated
	}
	if !kind.Valid() {
		return false, invalid("kind", "unknown entity kind")
	}

	ctx, span := telemetry.StartSpan(ctx, "forum.delete")
	defer span.End()
	span.SetAttributes(attribute.String("kind", kind.String()), attribute.Int64("target_id", id))

	var deleted bool
	err := retry.DoVoid(ctx, s.policy, classify, func() error {
		deleted = false
		return s.store.WithinTx(ctx, func(tx Tx) error {
			creatorID, found, err := tx.LockTarget(ctx, kind, id)
			if err != nil || !found {
				return err
			}
			if creatorID != userID {
				return ErrUnauthorized
			}
			if err := tx.DeleteCascade(ctx, kind, id); err != nil {
				return err
			}
			deleted = true
			return nil
		})
	})
	if err != nil {
		err = storeFailure(err)
		if !errors.Is(err, ErrUnauthorized) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logging.FromContext(ctx).Error("Delete failed",
				zap.Stringer("kind", kind),
				zap.Int64("id", id),
				zap.Error(err))
		}
		return false, err
	}
	return deleted, nil
}
