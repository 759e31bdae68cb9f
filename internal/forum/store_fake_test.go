package forum

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/alpost/backend/internal/models"
)

type voteKey struct {
	userID   int64
	targetID int64
}

// fakeStore is an in-memory Store. WithinTx holds the lock for the whole
// transaction and restores a snapshot when fn fails.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	clock   time.Time
	users   map[int64]models.User
	posts   map[int64]models.Post
	replies map[int64]models.Reply
	votes   map[Kind]map[voteKey]int16

	txErrs  []error // returned by successive WithinTx calls before fn runs
	txCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:   map[int64]models.User{},
		posts:   map[int64]models.Post{},
		replies: map[int64]models.Reply{},
		votes: map[Kind]map[voteKey]int16{
			KindPost:  {},
			KindReply: {},
		},
	}
}

func (s *fakeStore) tick() (int64, time.Time) {
	s.nextID++
	s.clock = s.clock.Add(time.Millisecond)
	return s.nextID, s.clock
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCalls++
	if len(s.txErrs) > 0 {
		err := s.txErrs[0]
		s.txErrs = s.txErrs[1:]
		if err != nil {
			return err
		}
	}

	posts := maps.Clone(s.posts)
	replies := maps.Clone(s.replies)
	postVotes := maps.Clone(s.votes[KindPost])
	replyVotes := maps.Clone(s.votes[KindReply])

	if err := fn(&fakeTx{s: s}); err != nil {
		s.posts = posts
		s.replies = replies
		s.votes[KindPost] = postVotes
		s.votes[KindReply] = replyVotes
		return err
	}
	return nil
}

func (s *fakeStore) withVoteStatus(kind Kind, id int64, viewer *int64) *int16 {
	if viewer == nil {
		return nil
	}
	if v, ok := s.votes[kind][voteKey{*viewer, id}]; ok {
		return &v
	}
	return nil
}

func newestFirst(ai, bi int64, at, bt time.Time) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return ai > bi
}

func (s *fakeStore) ListPosts(ctx context.Context, q FeedQuery) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Post
	for _, p := range s.posts {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Before != nil && !p.CreatedAt.Before(*q.Before) {
			continue
		}
		p.VoteStatus = s.withVoteStatus(KindPost, p.ID, q.Viewer)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *fakeStore) ListReplies(ctx context.Context, q FeedQuery) ([]models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reply
	for _, r := range s.replies {
		if r.PostID != q.PostID {
			continue
		}
		if q.Before != nil && !r.CreatedAt.Before(*q.Before) {
			continue
		}
		r.VoteStatus = s.withVoteStatus(KindReply, r.ID, q.Viewer)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *fakeStore) PostsByCreator(ctx context.Context, userID int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Post
	for _, p := range s.posts {
		if p.CreatorID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) RepliesByCreator(ctx context.Context, userID int64) ([]models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reply
	for _, r := range s.replies {
		if r.CreatorID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].ID, out[j].ID, out[i].CreatedAt, out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *fakeStore) GetReply(ctx context.Context, id int64) (*models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.replies[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *fakeStore) VotesByUser(ctx context.Context, kind Kind, userID int64) ([]Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Vote
	for k, v := range s.votes[kind] {
		if k.userID == userID {
			out = append(out, Vote{UserID: k.userID, TargetID: k.targetID, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetID < out[j].TargetID })
	return out, nil
}

func (s *fakeStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID, post.CreatedAt = s.tick()
	post.UpdatedAt = post.CreatedAt
	post.Points = 0
	s.posts[post.ID] = *post
	return nil
}

func (s *fakeStore) CreateReply(ctx context.Context, reply *models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[reply.PostID]; !ok {
		return ErrNotFound
	}
	reply.ID, reply.CreatedAt = s.tick()
	reply.UpdatedAt = reply.CreatedAt
	reply.Points = 0
	s.replies[reply.ID] = *reply
	return nil
}

func (s *fakeStore) UpdatePost(ctx context.Context, id, creatorID int64, fields PostFields) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok || p.CreatorID != creatorID {
		return nil, nil
	}
	p.Title, p.Text, p.Category = fields.Title, fields.Text, fields.Category
	_, p.UpdatedAt = s.tick()
	s.posts[id] = p
	return &p, nil
}

func (s *fakeStore) UpdateReply(ctx context.Context, id, creatorID int64, text string) (*models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.replies[id]
	if !ok || r.CreatorID != creatorID {
		return nil, nil
	}
	r.Text = text
	_, r.UpdatedAt = s.tick()
	s.replies[id] = r
	return &r, nil
}

func (s *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return invalid("username", "username or email already taken")
		}
	}
	user.ID, user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *fakeStore) UserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *fakeStore) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			return &u, nil
		}
	}
	return nil, nil
}

// points and ledgerSum read state for assertions.
func (s *fakeStore) points(kind Kind, id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindPost {
		return s.posts[id].Points
	}
	return s.replies[id].Points
}

func (s *fakeStore) ledgerSum(kind Kind, id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for k, v := range s.votes[kind] {
		if k.targetID == id {
			sum += int(v)
		}
	}
	return sum
}

func (s *fakeStore) ledger(kind Kind, userID, id int64) (int16, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[kind][voteKey{userID, id}]
	return v, ok
}

type fakeTx struct {
	s *fakeStore
}

func (tx *fakeTx) exists(kind Kind, id int64) (int64, bool) {
	if kind == KindPost {
		p, ok := tx.s.posts[id]
		return p.CreatorID, ok
	}
	r, ok := tx.s.replies[id]
	return r.CreatorID, ok
}

func (tx *fakeTx) TargetExists(ctx context.Context, kind Kind, id int64) (bool, error) {
	_, ok := tx.exists(kind, id)
	return ok, nil
}

func (tx *fakeTx) LockTarget(ctx context.Context, kind Kind, id int64) (int64, bool, error) {
	creatorID, ok := tx.exists(kind, id)
	return creatorID, ok, nil
}

func (tx *fakeTx) LockVote(ctx context.Context, kind Kind, userID, targetID int64) (*int16, error) {
	if v, ok := tx.s.votes[kind][voteKey{userID, targetID}]; ok {
		return &v, nil
	}
	return nil, nil
}

func (tx *fakeTx) InsertVote(ctx context.Context, kind Kind, userID, targetID int64, value int16) error {
	key := voteKey{userID, targetID}
	if _, ok := tx.s.votes[kind][key]; ok {
		return ErrConflict
	}
	tx.s.votes[kind][key] = value
	return nil
}

func (tx *fakeTx) SetVote(ctx context.Context, kind Kind, userID, targetID int64, value int16) error {
	tx.s.votes[kind][voteKey{userID, targetID}] = value
	return nil
}

func (tx *fakeTx) AddPoints(ctx context.Context, kind Kind, targetID int64, delta int) error {
	if kind == KindPost {
		p := tx.s.posts[targetID]
		p.Points += delta
		tx.s.posts[targetID] = p
		return nil
	}
	r := tx.s.replies[targetID]
	r.Points += delta
	tx.s.replies[targetID] = r
	return nil
}

func (tx *fakeTx) DeleteCascade(ctx context.Context, kind Kind, id int64) error {
	if kind == KindPost {
		for rid, r := range tx.s.replies {
			if r.PostID == id {
				tx.deleteVotes(KindReply, rid)
				delete(tx.s.replies, rid)
			}
		}
		tx.deleteVotes(KindPost, id)
		delete(tx.s.posts, id)
		return nil
	}
	tx.deleteVotes(KindReply, id)
	delete(tx.s.replies, id)
	return nil
}

func (tx *fakeTx) deleteVotes(kind Kind, targetID int64) {
	for k := range tx.s.votes[kind] {
		if k.targetID == targetID {
			delete(tx.s.votes[kind], k)
		}
	}
}
