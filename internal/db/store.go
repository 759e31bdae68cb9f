package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/internal/models"
)

// Store implements forum.Store on PostgreSQL.
type Store struct {
	db      *gorm.DB
	Users   *UserRepository
	Posts   *PostRepository
	Replies *ReplyRepository
	Votes   *VoteRepository
}

var _ forum.Store = (*Store)(nil)

// NewStore creates a store on an open connection
func NewStore(db *gorm.DB) *Store {
	repo := NewRepository(db)
	return &Store{
		db:      db,
		Users:   NewUserRepository(repo),
		Posts:   NewPostRepository(repo),
		Replies: NewReplyRepository(repo),
		Votes:   NewVoteRepository(repo),
	}
}

// WithinTx runs fn in one transaction, committing when fn returns nil
func (s *Store) WithinTx(ctx context.Context, fn func(tx forum.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{db: tx})
	})
	return translateError(err)
}

func (s *Store) ListPosts(ctx context.Context, q forum.FeedQuery) ([]models.Post, error) {
	posts, err := s.Posts.ListFeed(ctx, q)
	return posts, translateError(err)
}

func (s *Store) ListReplies(ctx context.Context, q forum.FeedQuery) ([]models.Reply, error) {
	replies, err := s.Replies.ListFeed(ctx, q)
	return replies, translateError(err)
}

func (s *Store) PostsByCreator(ctx context.Context, userID int64) ([]models.Post, error) {
	posts, err := s.Posts.ListByCreator(ctx, userID)
	return posts, translateError(err)
}

func (s *Store) RepliesByCreator(ctx context.Context, userID int64) ([]models.Reply, error) {
	replies, err := s.Replies.ListByCreator(ctx, userID)
	return replies, translateError(err)
}

func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.Posts.GetByID(ctx, id)
	return post, translateError(err)
}

func (s *Store) GetReply(ctx context.Context, id int64) (*models.Reply, error) {
	reply, err := s.Replies.GetByID(ctx, id)
	return reply, translateError(err)
}

func (s *Store) VotesByUser(ctx context.Context, kind forum.Kind, userID int64) ([]forum.Vote, error) {
	votes, err := s.Votes.ByUser(ctx, kind, userID)
	return votes, translateError(err)
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return translateError(s.Posts.Create(ctx, post))
}

func (s *Store) CreateReply(ctx context.Context, reply *models.Reply) error {
	return translateError(s.Replies.Create(ctx, reply))
}

func (s *Store) UpdatePost(ctx context.Context, id, creatorID int64, fields forum.PostFields) (*models.Post, error) {
	post, err := s.Posts.UpdateOwned(ctx, id, creatorID, fields)
	return post, translateError(err)
}

func (s *Store) UpdateReply(ctx context.Context, id, creatorID int64, text string) (*models.Reply, error) {
	reply, err := s.Replies.UpdateOwned(ctx, id, creatorID, text)
	return reply, translateError(err)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translateUserError(s.Users.Create(ctx, user))
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, id)
	return user, translateError(err)
}

func (s *Store) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	user, err := s.Users.GetByLogin(ctx, login)
	return user, translateError(err)
}

// UsersByIDs backs the request-scoped identity loader.
func (s *Store) UsersByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	users, err := s.Users.GetByIDs(ctx, ids)
	return users, translateError(err)
}
