// Package forumapi implements the forum_api JSON-RPC namespace.
package forumapi

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/alpost/backend/internal/api/objects"
	"github.com/alpost/backend/internal/api/request"
	"github.com/alpost/backend/internal/forum"
)

// API provides forum_api methods
type API struct {
	svc *forum.Service
}

// New creates a new forum API
func New(svc *forum.Service) *API {
	return &API{svc: svc}
}

type idParams struct {
	ID int64 `json:"id"`
}

type userParams struct {
	UserID int64 `json:"userId"`
}

func builder(c *gin.Context) *objects.Builder {
	return objects.NewBuilder(request.UserLoader(c), request.UserID(c))
}

// Vote handles forum_api.vote
func (a *API) Vote(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		PostID int64 `json:"postId"`
		Value  int   `json:"value"`
	}
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	return a.svc.Vote(c.Request.Context(), forum.KindPost, p.PostID, userID, p.Value)
}

// VoteReply handles forum_api.vote_reply
func (a *API) VoteReply(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ReplyID int64 `json:"replyId"`
		Value   int   `json:"value"`
	}
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	return a.svc.Vote(c.Request.Context(), forum.KindReply, p.ReplyID, userID, p.Value)
}

// GetPosts handles forum_api.get_posts
func (a *API) GetPosts(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Limit    int     `json:"limit"`
		Cursor   *string `json:"cursor"`
		Category string  `json:"category"`
	}
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}

	req := forum.PostFeedRequest{Limit: p.Limit, Category: p.Category}
	if p.Cursor != nil {
		req.Cursor = *p.Cursor
	}
	page, err := a.svc.Posts(c.Request.Context(), req, request.Viewer(c))
	if err != nil {
		return nil, err
	}
	return builder(c).PostPage(page)
}

// GetReplies handles forum_api.get_replies
func (a *API) GetReplies(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Limit  int     `json:"limit"`
		Cursor *string `json:"cursor"`
		PostID int64   `json:"postId"`
	}
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}

	req := forum.ReplyFeedRequest{Limit: p.Limit, PostID: p.PostID}
	if p.Cursor != nil {
		req.Cursor = *p.Cursor
	}
	page, err := a.svc.Replies(c.Request.Context(), req, request.Viewer(c))
	if err != nil {
		return nil, err
	}
	return builder(c).ReplyPage(page)
}

// GetPost handles forum_api.get_post
func (a *API) GetPost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	post, err := a.svc.Post(c.Request.Context(), p.ID)
	if err != nil {
		return nil, err
	}
	return builder(c).Post(post)
}

// GetReply handles forum_api.get_reply
func (a *API) GetReply(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	reply, err := a.svc.Reply(c.Request.Context(), p.ID)
	if err != nil {
		return nil, err
	}
	return builder(c).Reply(reply)
}

// GetUserPosts handles forum_api.get_user_posts
func (a *API) GetUserPosts(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	posts, err := a.svc.PostsByCreator(c.Request.Context(), p.UserID)
	if err != nil {
		return nil, err
	}
	return builder(c).Posts(posts)
}

// GetUserReplies handles forum_api.get_user_replies
func (a *API) GetUserReplies(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	replies, err := a.svc.RepliesByCreator(c.Request.Context(), p.UserID)
	if err != nil {
		return nil, err
	}
	return builder(c).Replies(replies)
}

// GetUserVotes handles forum_api.get_user_votes
func (a *API) GetUserVotes(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	return a.svc.VotesByUser(c.Request.Context(), forum.KindPost, p.UserID)
}

// GetUserReplyVotes handles forum_api.get_user_reply_votes
func (a *API) GetUserReplyVotes(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p userParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	return a.svc.VotesByUser(c.Request.Context(), forum.KindReply, p.UserID)
}

// CreatePost handles forum_api.create_post
func (a *API) CreatePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p forum.PostInput
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	post, err := a.svc.CreatePost(c.Request.Context(), p, userID)
	if err != nil {
		return nil, err
	}
	return builder(c).Post(post)
}

// CreateReply handles forum_api.create_reply
func (a *API) CreateReply(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p forum.ReplyInput
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	reply, err := a.svc.CreateReply(c.Request.Context(), p, userID)
	if err != nil {
		return nil, err
	}
	return builder(c).Reply(reply)
}

// UpdatePost handles forum_api.update_post
func (a *API) UpdatePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ID int64 `json:"id"`
		forum.PostInput
	}
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	post, err := a.svc.UpdatePost(c.Request.Context(), p.ID, p.PostInput, userID)
	if err != nil {
		return nil, err
	}
	return builder(c).Post(post)
}

// UpdateReply handles forum_api.update_reply
func (a *API) UpdateReply(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ID int64 `json:"id"`
		forum.ReplyUpdateInput
	}
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	reply, err := a.svc.UpdateReply(c.Request.Context(), p.ID, p.ReplyUpdateInput, userID)
	if err != nil {
		return nil, err
	}
	return builder(c).Reply(reply)
}

// DeletePost handles forum_api.delete_post
func (a *API) DeletePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.delete(c, forum.KindPost, params)
}

// DeleteReply handles forum_api.delete_reply
func (a *API) DeleteReply(c *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.delete(c, forum.KindReply, params)
}

func (a *API) delete(c *gin.Context, kind forum.Kind, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	userID, err := request.RequireUser(c)
	if err != nil {
		return nil, err
	}
	return a.svc.Delete(c.Request.Context(), kind, p.ID, userID)
}
