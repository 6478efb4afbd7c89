package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/internal/api/objects"
	"github.com/yatube/yatube/internal/cache"
)

// decodeParams unmarshals named params. Missing params leave dst untouched.
func decodeParams(params json.RawMessage, dst interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return invalidParams(fmt.Errorf("invalid parameters format: %w", err))
	}
	return nil
}

// authenticated rejects anonymous callers
func (r *Router) authenticated(next MethodHandler) MethodHandler {
	return func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		if _, err := requireIdentity(c); err != nil {
			return nil, err
		}
		return next(c, params)
	}
}

// limited rejects anonymous callers and callers over their rate limit
func (r *Router) limited(next MethodHandler) MethodHandler {
	return r.authenticated(func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		if err := r.limiter.allow(c); err != nil {
			return nil, err
		}
		return next(c, params)
	})
}

type pageParams struct {
	Page int `json:"page"`
}

// rpcGetIndex handles yatube.get_index
func (r *Router) rpcGetIndex(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p pageParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	key := cache.PageKey("rpc:yatube.get_index", url.Values{"page": {strconv.Itoa(p.Page)}})
	body, err := r.views.CachedIndex(c.Request.Context(), key, p.Page)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// rpcGetGroupPosts handles yatube.get_group_posts
func (r *Router) rpcGetGroupPosts(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Slug string `json:"slug"`
		Page int    `json:"page"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Slug == "" {
		return nil, invalidParams(fmt.Errorf("missing required parameter: slug"))
	}
	return r.views.GroupPosts(c.Request.Context(), p.Slug, p.Page)
}

// rpcGetProfile handles yatube.get_profile
func (r *Router) rpcGetProfile(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Username string `json:"username"`
		Page     int    `json:"page"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Username == "" {
		return nil, invalidParams(fmt.Errorf("missing required parameter: username"))
	}
	return r.views.Profile(c.Request.Context(), CurrentIdentity(c), p.Username, p.Page)
}

type postIDParams struct {
	ID int64 `json:"id"`
}

// rpcGetPost handles yatube.get_post
func (r *Router) rpcGetPost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p postIDParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return r.views.PostDetail(c.Request.Context(), p.ID)
}

// rpcListGroups handles yatube.list_groups
func (r *Router) rpcListGroups(c *gin.Context, _ json.RawMessage) (interface{}, error) {
	return r.views.Groups(c.Request.Context())
}

// rpcGetFollowIndex handles yatube.get_follow_index
func (r *Router) rpcGetFollowIndex(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p pageParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return r.views.FollowIndex(c.Request.Context(), CurrentIdentity(c), p.Page)
}

// rpcCreatePost handles yatube.create_post
func (r *Router) rpcCreatePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p postRequest
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	post, err := r.authoring.CreatePost(c.Request.Context(), CurrentIdentity(c).ID, p.input())
	if err != nil {
		return nil, err
	}
	return objects.NewPost(post), nil
}

// rpcEditPost handles yatube.edit_post
func (r *Router) rpcEditPost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		postRequest
		ID int64 `json:"id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	post, err := r.authoring.EditPost(c.Request.Context(), CurrentIdentity(c).ID, p.ID, p.input())
	if err != nil {
		return nil, err
	}
	return objects.NewPost(post), nil
}

// rpcAddComment handles yatube.add_comment
func (r *Router) rpcAddComment(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		PostID int64  `json:"post_id"`
		Text   string `json:"text"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	viewer := CurrentIdentity(c)
	comment, err := r.authoring.CreateComment(c.Request.Context(), viewer.ID, p.PostID, p.Text)
	if err != nil {
		return nil, err
	}
	out := objects.NewComment(comment)
	out.Author = viewer.Username
	return out, nil
}

type usernameParams struct {
	Username string `json:"username"`
}

// rpcFollow handles yatube.follow
func (r *Router) rpcFollow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p usernameParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := r.follows.FollowUsername(c.Request.Context(), CurrentIdentity(c).ID, p.Username); err != nil {
		return nil, err
	}
	return gin.H{"following": true}, nil
}

// rpcUnfollow handles yatube.unfollow
func (r *Router) rpcUnfollow(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p usernameParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := r.follows.UnfollowUsername(c.Request.Context(), CurrentIdentity(c).ID, p.Username); err != nil {
		return nil, err
	}
	return gin.H{"following": false}, nil
}
