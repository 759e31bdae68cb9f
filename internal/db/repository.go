package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByLogin retrieves a user by username, or by email when login contains '@'
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	column := "username = ?"
	if strings.Contains(login, "@") {
		column = "email = ?"
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where(column, login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves multiple users in one query
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListFeed reads one feed window, newest first
func (r *PostRepository) ListFeed(ctx context.Context, q forum.FeedQuery) ([]models.Post, error) {
	query := feedQuery(r.db.WithContext(ctx).Model(&models.Post{}), "posts", "updoots", "post_id", q)
	if q.Category != "" {
		query = query.Where("posts.category = ?", q.Category)
	}

	posts := make([]models.Post, 0, q.Limit)
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByCreator retrieves every post of one user, newest first
func (r *PostRepository) ListByCreator(ctx context.Context, creatorID int64) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	post.Points = 0
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateOwned rewrites a post only when creatorID owns it. A missing or
// foreign post yields nil, nil.
func (r *PostRepository) UpdateOwned(ctx context.Context, id, creatorID int64, fields forum.PostFields) (*models.Post, error) {
	var post models.Post
	res := r.db.WithContext(ctx).Model(&post).
		Clauses(clause.Returning{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(map[string]interface{}{
			"title":    fields.Title,
			"text":     fields.Text,
			"category": fields.Category,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &post, nil
}

// ReplyRepository provides reply-related database operations
type ReplyRepository struct {
	*Repository
}

// NewReplyRepository creates a new reply repository
func NewReplyRepository(repo *Repository) *ReplyRepository {
	return &ReplyRepository{Repository: repo}
}

// GetByID retrieves a reply by ID
func (r *ReplyRepository) GetByID(ctx context.Context, id int64) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

// ListFeed reads one window of a post's replies, newest first
func (r *ReplyRepository) ListFeed(ctx context.Context, q forum.FeedQuery) ([]models.Reply, error) {
	query := feedQuery(r.db.WithContext(ctx).Model(&models.Reply{}), "replies", "reply_votes", "reply_id", q).
		Where("replies.post_id = ?", q.PostID)

	replies := make([]models.Reply, 0, q.Limit)
	if err := query.Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// ListByCreator retrieves every reply of one user, newest first
func (r *ReplyRepository) ListByCreator(ctx context.Context, creatorID int64) ([]models.Reply, error) {
	var replies []models.Reply
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// Create creates a new reply
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	reply.Points = 0
	return r.db.WithContext(ctx).Create(reply).Error
}

// UpdateOwned rewrites a reply only when creatorID owns it
func (r *ReplyRepository) UpdateOwned(ctx context.Context, id, creatorID int64, text string) (*models.Reply, error) {
	var reply models.Reply
	res := r.db.WithContext(ctx).Model(&reply).
		Clauses(clause.Returning{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(map[string]interface{}{"text": text})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &reply, nil
}

// VoteRepository provides ledger read operations
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// ByUser lists every ledger row of one user
func (r *VoteRepository) ByUser(ctx context.Context, kind forum.Kind, userID int64) ([]forum.Vote, error) {
	t := ledgerTables(kind)

	votes := []forum.Vote{}
	if err := r.db.WithContext(ctx).
		Table(t.ledger).
		Select("user_id, "+t.target+" AS target_id, value").
		Where("user_id = ?", userID).
		Order(t.target).
		Scan(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

// feedQuery applies the shared feed shape: viewer vote status, cursor and
// newest-first ordering with a deterministic tie-break.
func feedQuery(query *gorm.DB, table, ledger, target string, q forum.FeedQuery) *gorm.DB {
	if q.Viewer != nil {
		query = query.Select(
			table+".*, (SELECT "+ledger+".value FROM "+ledger+
				" WHERE "+ledger+".user_id = ? AND "+ledger+"."+target+" = "+table+".id) AS vote_status",
			*q.Viewer)
	} else {
		query = query.Select(table + ".*")
	}
	if q.Before != nil {
		query = query.Where(table+".created_at < ?", q.Before.UTC())
	}
	return query.
		Order(table + ".created_at DESC").
		Order(table + ".id DESC").
		Limit(q.Limit)
}

