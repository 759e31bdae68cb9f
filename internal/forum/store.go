package forum

import (
	"context"
	"time"

	"github.com/alpost/backend/internal/models"
)

// FeedQuery is a single feed fetch as issued to the store. Limit is the
// number of rows to read, already including the look-ahead row.
type FeedQuery struct {
	Limit    int
	Before   *time.Time
	Category string // posts only, empty means every category
	PostID   int64  // replies only
	Viewer   *int64
}

// Vote is one ledger row.
type Vote struct {
	UserID   int64 `json:"userId"`
	TargetID int64 `json:"targetId"`
	Value    int16 `json:"value"`
}

// PostFields are the mutable columns of a post.
type PostFields struct {
	Title    string
	Text     string
	Category string
}

// Store is the persistence surface the forum service runs against.
// Lookups return nil, nil when the row does not exist.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	ListPosts(ctx context.Context, q FeedQuery) ([]models.Post, error)
	ListReplies(ctx context.Context, q FeedQuery) ([]models.Reply, error)
	PostsByCreator(ctx context.Context, userID int64) ([]models.Post, error)
	RepliesByCreator(ctx context.Context, userID int64) ([]models.Reply, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	GetReply(ctx context.Context, id int64) (*models.Reply, error)
	VotesByUser(ctx context.Context, kind Kind, userID int64) ([]Vote, error)

	CreatePost(ctx context.Context, post *models.Post) error
	CreateReply(ctx context.Context, reply *models.Reply) error
	UpdatePost(ctx context.Context, id, creatorID int64, fields PostFields) (*models.Post, error)
	UpdateReply(ctx context.Context, id, creatorID int64, text string) (*models.Reply, error)

	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error)
}

// Tx is the transactional view used by votes and deletes.
type Tx interface {
	// TargetExists reports whether the entity exists, holding a share lock
	// on it until the transaction ends.
	TargetExists(ctx context.Context, kind Kind, id int64) (bool, error)
	// LockTarget locks the entity for update and returns its creator.
	LockTarget(ctx context.Context, kind Kind, id int64) (creatorID int64, found bool, err error)
	// LockVote reads the ledger value FOR UPDATE, nil when there is no row.
	LockVote(ctx context.Context, kind Kind, userID, targetID int64) (*int16, error)
	InsertVote(ctx context.Context, kind Kind, userID, targetID int64, value int16) error
	SetVote(ctx context.Context, kind Kind, userID, targetID int64, value int16) error
	// AddPoints applies delta relative to the stored aggregate.
	AddPoints(ctx context.Context, kind Kind, targetID int64, delta int) error
	// DeleteCascade removes the entity and every row depending on it.
	DeleteCascade(ctx context.Context, kind Kind, id int64) error
}
