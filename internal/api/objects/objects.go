// Package objects renders stored forum rows into API response objects.
package objects

import (
	"strconv"
	"time"

	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/internal/loader"
	"github.com/alpost/backend/internal/models"
)

// snippetLength is the number of characters kept in a post's textSnippet.
const snippetLength = 300

// User is the public view of an account. Email is only shown to its owner.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Post is a post as returned by the API
type Post struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	TextSnippet string `json:"textSnippet"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	VoteStatus  *int16 `json:"voteStatus"`
	CreatorID   int64  `json:"creatorId"`
	Creator     *User  `json:"creator"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Reply is a reply as returned by the API
type Reply struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	PostID     int64  `json:"postId"`
	Points     int    `json:"points"`
	VoteStatus *int16 `json:"voteStatus"`
	CreatorID  int64  `json:"creatorId"`
	Creator    *User  `json:"creator"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// Page is one feed page as returned by the API
type Page[T any] struct {
	Items      []T    `json:"items"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Builder renders rows for one request. Creators are resolved through the
// request's loader so a page costs one user query.
type Builder struct {
	users  *loader.UserLoader
	viewer int64
}

// NewBuilder creates a builder for the given viewer (0 when anonymous).
func NewBuilder(users *loader.UserLoader, viewer int64) *Builder {
	return &Builder{users: users, viewer: viewer}
}

// Millis renders t as decimal milliseconds since the epoch.
func Millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Snippet returns the first 300 characters of text.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength])
}

// User renders u. It returns nil for a nil user.
func (b *Builder) User(u *models.User) *User {
	if u == nil {
		return nil
	}
	out := &User{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: Millis(u.CreatedAt),
		UpdatedAt: Millis(u.UpdatedAt),
	}
	if b.viewer == u.ID {
		out.Email = u.Email
	}
	return out
}

// Posts renders posts with their creators.
func (b *Builder) Posts(posts []models.Post) ([]Post, error) {
	ids := make([]int64, len(posts))
	for i := range posts {
		ids[i] = posts[i].CreatorID
	}
	creators, err := b.users.LoadMany(ids)
	if err != nil {
		return nil, err
	}

	out := make([]Post, len(posts))
	for i := range posts {
		p := &posts[i]
		out[i] = Post{
			ID:          p.ID,
			Title:       p.Title,
			Text:        p.Text,
			TextSnippet: Snippet(p.Text),
			Category:    p.Category,
			Points:      p.Points,
			VoteStatus:  p.VoteStatus,
			CreatorID:   p.CreatorID,
			Creator:     b.User(creators[p.CreatorID]),
			CreatedAt:   Millis(p.CreatedAt),
			UpdatedAt:   Millis(p.UpdatedAt),
		}
	}
	return out, nil
}

// Post renders one post, nil for a nil post.
func (b *Builder) Post(p *models.Post) (*Post, error) {
	if p == nil {
		return nil, nil
	}
	out, err := b.Posts([]models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Replies renders replies with their creators.
func (b *Builder) Replies(replies []models.Reply) ([]Reply, error) {
	ids := make([]int64, len(replies))
	for i := range replies {
		ids[i] = replies[i].CreatorID
	}
	creators, err := b.users.LoadMany(ids)
	if err != nil {
		return nil, err
	}

	out := make([]Reply, len(replies))
	for i := range replies {
		r := &replies[i]
		out[i] = Reply{
			ID:         r.ID,
			Text:       r.Text,
			PostID:     r.PostID,
			Points:     r.Points,
			VoteStatus: r.VoteStatus,
			CreatorID:  r.CreatorID,
			Creator:    b.User(creators[r.CreatorID]),
			CreatedAt:  Millis(r.CreatedAt),
			UpdatedAt:  Millis(r.UpdatedAt),
		}
	}
	return out, nil
}

// Reply renders one reply, nil for a nil reply.
func (b *Builder) Reply(r *models.Reply) (*Reply, error) {
	if r == nil {
		return nil, nil
	}
	out, err := b.Replies([]models.Reply{*r})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// PostPage renders a feed page of posts.
func (b *Builder) PostPage(page *forum.Page[models.Post]) (*Page[Post], error) {
	items, err := b.Posts(page.Items)
	if err != nil {
		return nil, err
	}
	return &Page[Post]{Items: items, HasMore: page.HasMore, NextCursor: page.NextCursor}, nil
}

// ReplyPage renders a feed page of replies.
func (b *Builder) ReplyPage(page *forum.Page[models.Reply]) (*Page[Reply], error) {
	items, err := b.Replies(page.Items)
	if err != nil {
		return nil, err
	}
	return &Page[Reply]{Items: items, HasMore: page.HasMore, NextCursor: page.NextCursor}, nil
}
