package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/internal/api/objects"
	"github.com/yatube/yatube/internal/authoring"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/models"
)

// postRequest is the body of create and edit post calls
type postRequest struct {
	Text    string  `json:"text"`
	GroupID *int64  `json:"group_id"`
	Image   *string `json:"image"`
}

func (p postRequest) input() authoring.PostInput {
	return authoring.PostInput{Text: p.Text, GroupID: p.GroupID, Image: p.Image}
}

type commentRequest struct {
	Text string `json:"text"`
}

type groupRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func pageParam(c *gin.Context) int {
	return feed.ParsePage(c.Query("page"))
}

func postIDParam(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("post %q: %w", raw, models.ErrNotFound)
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return invalidParams(err)
	}
	return nil
}

// respond writes v with status, or the mapped error
func respond(c *gin.Context, status int, v interface{}, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	if v == nil {
		c.Status(status)
		return
	}
	c.JSON(status, v)
}

// getIndex serves the global feed from the page cache
func (r *Router) getIndex(c *gin.Context) {
	key := cache.PageKey(c.Request.URL.Path, c.Request.URL.Query())
	body, err := r.views.CachedIndex(c.Request.Context(), key, pageParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (r *Router) getGroupPosts(c *gin.Context) {
	out, err := r.views.GroupPosts(c.Request.Context(), c.Param("slug"), pageParam(c))
	respond(c, http.StatusOK, out, err)
}

func (r *Router) getProfile(c *gin.Context) {
	out, err := r.views.Profile(c.Request.Context(), CurrentIdentity(c), c.Param("username"), pageParam(c))
	respond(c, http.StatusOK, out, err)
}

func (r *Router) getPost(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out, err := r.views.PostDetail(c.Request.Context(), id)
	respond(c, http.StatusOK, out, err)
}

func (r *Router) listGroups(c *gin.Context) {
	out, err := r.views.Groups(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (r *Router) getFollowIndex(c *gin.Context) {
	out, err := r.views.FollowIndex(c.Request.Context(), CurrentIdentity(c), pageParam(c))
	respond(c, http.StatusOK, out, err)
}

func (r *Router) createPost(c *gin.Context) {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	post, err := r.authoring.CreatePost(c.Request.Context(), CurrentIdentity(c).ID, req.input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, objects.NewPost(post))
}

func (r *Router) editPost(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	post, err := r.authoring.EditPost(c.Request.Context(), CurrentIdentity(c).ID, id, req.input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, objects.NewPost(post))
}

func (r *Router) addComment(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	viewer := CurrentIdentity(c)
	comment, err := r.authoring.CreateComment(c.Request.Context(), viewer.ID, id, req.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := objects.NewComment(comment)
	out.Author = viewer.Username
	c.JSON(http.StatusCreated, out)
}

func (r *Router) followProfile(c *gin.Context) {
	err := r.follows.FollowUsername(c.Request.Context(), CurrentIdentity(c).ID, c.Param("username"))
	respond(c, http.StatusOK, gin.H{"following": true}, err)
}

func (r *Router) unfollowProfile(c *gin.Context) {
	err := r.follows.UnfollowUsername(c.Request.Context(), CurrentIdentity(c).ID, c.Param("username"))
	respond(c, http.StatusOK, gin.H{"following": false}, err)
}

func (r *Router) createGroup(c *gin.Context) {
	var req groupRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	group, err := r.authoring.CreateGroup(c.Request.Context(), req.Title, req.Slug, req.Description)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, objects.NewGroup(group))
}

func (r *Router) deleteGroup(c *gin.Context) {
	err := r.authoring.DeleteGroup(c.Request.Context(), c.Param("slug"))
	respond(c, http.StatusNoContent, nil, err)
}

func (r *Router) deleteUser(c *gin.Context) {
	err := r.authoring.DeleteUser(c.Request.Context(), c.Param("username"))
	respond(c, http.StatusNoContent, nil, err)
}

func (r *Router) invalidateCache(c *gin.Context) {
	err := r.pages.InvalidateAll(c.Request.Context())
	respond(c, http.StatusNoContent, nil, err)
}
