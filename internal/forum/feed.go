package forum

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/alpost/backend/internal/models"
	"github.com/alpost/backend/pkg/telemetry"
)

// MaxPageSize caps the number of items a feed page returns.
const MaxPageSize = 50

// maxCursor is the last millisecond of year 9999.
const maxCursor = 253402300799999

// CategoryAll disables category filtering on the post feed.
const CategoryAll = "all"

// Page is one page of a newest-first feed.
type Page[T any] struct {
	Items      []T    `json:"items"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// PostFeedRequest selects a page of posts.
type PostFeedRequest struct {
	Limit    int
	Cursor   string
	Category string
}

// ReplyFeedRequest selects a page of replies under one post.
type ReplyFeedRequest struct {
	Limit  int
	Cursor string
	PostID int64
}

// ClampLimit bounds a requested page size to [1, MaxPageSize].
func ClampLimit(limit int) int {
	if limit > MaxPageSize {
		return MaxPageSize
	}
	if limit < 1 {
		return 1
	}
	return limit
}

// ParseCursor decodes an opaque cursor, the decimal milliseconds since the
// epoch of the last item already seen. An empty cursor means the first page.
func ParseCursor(cursor string) (*time.Time, error) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || ms < 0 || ms > maxCursor {
		return nil, invalid("cursor", "cursor must be a millisecond timestamp")
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

// FormatCursor encodes t as a cursor.
func FormatCursor(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Posts returns a page of posts, newest first. viewer may be nil; when set,
// each post carries the viewer's vote status.
func (s *Service) Posts(ctx context.Context, req PostFeedRequest, viewer *int64) (*Page[models.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.feed")
	defer span.End()

	limit := ClampLimit(req.Limit)
	before, err := ParseCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(req.Category)
	if strings.EqualFold(category, CategoryAll) {
		category = ""
	}
	span.SetAttributes(attribute.String("kind", KindPost.String()), attribute.Int("limit", limit))

	rows, err := s.store.ListPosts(ctx, FeedQuery{
		Limit:    limit + 1,
		Before:   before,
		Category: category,
		Viewer:   viewer,
	})
	if err != nil {
		return nil, storeFailure(err)
	}
	return paginate(rows, limit, func(p models.Post) time.Time { return p.CreatedAt }), nil
}

// Replies returns a page of replies under one post, newest first.
func (s *Service) Replies(ctx context.Context, req ReplyFeedRequest, viewer *int64) (*Page[models.Reply], error) {
	ctx, span := telemetry.StartSpan(ctx, "forum.feed")
	defer span.End()

	limit := ClampLimit(req.Limit)
	before, err := ParseCursor(req.Cursor)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("kind", KindReply.String()), attribute.Int("limit", limit))

	rows, err := s.store.ListReplies(ctx, FeedQuery{
		Limit:  limit + 1,
		Before: before,
		PostID: req.PostID,
		Viewer: viewer,
	})
	if err != nil {
		return nil, storeFailure(err)
	}
	return paginate(rows, limit, func(r models.Reply) time.Time { return r.CreatedAt }), nil
}

// paginate trims the look-ahead row and derives the next cursor.
func paginate[T any](rows []T, limit int, createdAt func(T) time.Time) *Page[T] {
	page := &Page[T]{Items: rows, HasMore: len(rows) == limit+1}
	if len(rows) > limit {
		page.Items = rows[:limit]
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if n := len(page.Items); n > 0 {
		page.NextCursor = FormatCursor(createdAt(page.Items[n-1]))
	}
	return page
}

// PostsByCreator lists every post by userID, newest first, unpaginated.
func (s *Service) PostsByCreator(ctx context.Context, userID int64) ([]models.Post, error) {
	posts, err := s.store.PostsByCreator(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return posts, nil
}

// RepliesByCreator lists every reply by userID, newest first, unpaginated.
func (s *Service) RepliesByCreator(ctx context.Context, userID int64) ([]models.Reply, error) {
	replies, err := s.store.RepliesByCreator(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return replies, nil
}

// Post returns a post by id, or nil when it does not exist.
func (s *Service) Post(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return post, nil
}

// Reply returns a reply by id, or nil when it does not exist.
func (s *Service) Reply(ctx context.Context, id int64) (*models.Reply, error) {
	reply, err := s.store.GetReply(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return reply, nil
}

// VotesByUser lists every ledger row of userID for one entity kind.
func (s *Service) VotesByUser(ctx context.Context, kind Kind, userID int64) ([]Vote, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "unknown entity kind")
	}
	votes, err := s.store.VotesByUser(ctx, kind, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return votes, nil
}
