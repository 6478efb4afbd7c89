package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/api/objects"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/db/dbtest"
	"github.com/yatube/yatube/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	cfg    *config.Config
}

func newTestServer(t *testing.T, rl config.RateLimitConfig) *testServer {
	cfg := &config.Config{
		Auth:      config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "yatube-test"},
		RateLimit: rl,
	}
	pages := cache.NewPageCache(cache.NewMemory(), time.Hour)
	router := NewRouter(dbtest.New(t), pages, cfg)

	engine := gin.New()
	router.SetupRoutes(engine)
	return &testServer{t: t, engine: engine, cfg: cfg}
}

func defaultServer(t *testing.T) *testServer {
	return newTestServer(t, config.RateLimitConfig{RPS: 1000, Burst: 1000})
}

func (s *testServer) token(id int64, username string, roles ...string) string {
	tok, err := IssueToken(&s.cfg.Auth, Identity{ID: id, Username: username, Roles: roles}, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := defaultServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestIndex_CachedUntilInvalidated(t *testing.T) {
	s := defaultServer(t)
	author := s.token(1, "leo")
	admin := s.token(99, "root", RoleAdmin)

	w := s.do(http.MethodPost, "/api/v1/posts", author, gin.H{"text": "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	first := s.do(http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, first.Code)

	w = s.do(http.MethodPost, "/api/v1/posts", author, gin.H{"text": "second"})
	require.Equal(t, http.StatusCreated, w.Code)

	stale := s.do(http.MethodGet, "/api/v1/posts", "", nil)
	assert.Equal(t, first.Body.Bytes(), stale.Body.Bytes())

	// Another page is cached separately and sees both posts.
	other := decode[objects.Page](t, s.do(http.MethodGet, "/api/v1/posts?page=1", "", nil))
	assert.Len(t, other.Items, 2)

	w = s.do(http.MethodPost, "/api/v1/admin/cache/invalidate", admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	fresh := decode[objects.Page](t, s.do(http.MethodGet, "/api/v1/posts", "", nil))
	require.Len(t, fresh.Items, 2)
	assert.Equal(t, "second", fresh.Items[0].Text)
	assert.Equal(t, "leo", fresh.Items[0].Author)
}

func TestWritesRequireAuthentication(t *testing.T) {
	s := defaultServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/posts"},
		{http.MethodPut, "/api/v1/posts/1"},
		{http.MethodPost, "/api/v1/posts/1/comments"},
		{http.MethodPost, "/api/v1/profiles/leo/follow"},
		{http.MethodDelete, "/api/v1/profiles/leo/follow"},
		{http.MethodGet, "/api/v1/follow"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.do(tt.method, tt.path, "", gin.H{"text": "x"})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := s.do(http.MethodPost, "/api/v1/posts", "not-a-token", gin.H{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEditPost_Ownership(t *testing.T) {
	s := defaultServer(t)
	owner := s.token(1, "leo")
	other := s.token(2, "anna")

	created := decode[objects.Post](t, s.do(http.MethodPost, "/api/v1/posts", owner, gin.H{"text": "original"}))
	path := fmt.Sprintf("/api/v1/posts/%d", created.ID)

	w := s.do(http.MethodPut, path, other, gin.H{"text": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/v1/posts/9999", owner, gin.H{"text": "nothing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, path, owner, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	detail := decode[objects.PostDetail](t, s.do(http.MethodGet, path, "", nil))
	assert.Equal(t, "original", detail.Post.Text)

	edited := decode[objects.Post](t, s.do(http.MethodPut, path, owner, gin.H{"text": "edited"}))
	assert.Equal(t, "edited", edited.Text)
	assert.True(t, edited.CreatedAt.Equal(created.CreatedAt))
}

func TestPostDetail(t *testing.T) {
	s := defaultServer(t)
	owner := s.token(1, "leo")
	reader := s.token(2, "anna")

	created := decode[objects.Post](t, s.do(http.MethodPost, "/api/v1/posts", owner, gin.H{"text": "post"}))
	path := fmt.Sprintf("/api/v1/posts/%d", created.ID)

	for _, text := range []string{"one", "two"} {
		w := s.do(http.MethodPost, path+"/comments", reader, gin.H{"text": text})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"comment_form":{"text":""}`)

	detail := decode[objects.PostDetail](t, w)
	assert.Equal(t, int64(1), detail.AuthorPostCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "one", detail.Comments[0].Text)
	assert.Equal(t, "anna", detail.Comments[0].Author)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/posts/abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/posts/9999/comments", reader, gin.H{"text": "x"}).Code)
}

func TestFollowFlow(t *testing.T) {
	s := defaultServer(t)
	a := s.token(1, "a")
	b := s.token(2, "b")
	c := s.token(3, "c")

	s.do(http.MethodPost, "/api/v1/posts", b, gin.H{"text": "from b"})
	s.do(http.MethodPost, "/api/v1/posts", c, gin.H{"text": "from c"})

	empty := decode[objects.Page](t, s.do(http.MethodGet, "/api/v1/follow", a, nil))
	assert.Empty(t, empty.Items)

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/v1/profiles/b/follow", a, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(http.MethodPost, "/api/v1/profiles/a/follow", a, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/v1/profiles/ghost/follow", a, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	feed := decode[objects.Page](t, s.do(http.MethodGet, "/api/v1/follow", a, nil))
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "from b", feed.Items[0].Text)

	profile := decode[objects.Profile](t, s.do(http.MethodGet, "/api/v1/profiles/b", a, nil))
	assert.True(t, profile.Following)
	assert.Equal(t, int64(1), profile.PostCount)
	assert.Equal(t, int64(1), profile.FollowerCount)
	assert.Zero(t, profile.FollowingCount)

	mine := decode[objects.Profile](t, s.do(http.MethodGet, "/api/v1/profiles/a", a, nil))
	assert.Zero(t, mine.FollowerCount)
	assert.Equal(t, int64(1), mine.FollowingCount)

	anon := decode[objects.Profile](t, s.do(http.MethodGet, "/api/v1/profiles/b", "", nil))
	assert.False(t, anon.Following)

	w = s.do(http.MethodDelete, "/api/v1/profiles/b/follow", a, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/profiles/b/follow", a, nil)
	require.Equal(t, http.StatusOK, w.Code)

	profile = decode[objects.Profile](t, s.do(http.MethodGet, "/api/v1/profiles/b", a, nil))
	assert.False(t, profile.Following)
	assert.Zero(t, profile.FollowerCount)
}

func TestGroupsAndAdmin(t *testing.T) {
	s := defaultServer(t)
	admin := s.token(99, "root", RoleAdmin)
	user := s.token(1, "leo")

	w := s.do(http.MethodPost, "/api/v1/admin/groups", user, gin.H{"title": "Cats", "slug": "cats"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPost, "/api/v1/admin/groups", "", gin.H{"title": "Cats", "slug": "cats"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	group := decode[objects.Group](t, s.do(http.MethodPost, "/api/v1/admin/groups", admin, gin.H{"title": "Cats", "slug": "cats", "description": "meow"}))
	w = s.do(http.MethodPost, "/api/v1/admin/groups", admin, gin.H{"title": "Cats again", "slug": "cats"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/posts", user, gin.H{"text": "in cats", "group_id": group.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/v1/posts", user, gin.H{"text": "nowhere", "group_id": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)

	gf := decode[objects.GroupFeed](t, s.do(http.MethodGet, "/api/v1/groups/cats/posts", "", nil))
	assert.Equal(t, "meow", gf.Group.Description)
	require.Len(t, gf.Page.Items, 1)
	assert.Equal(t, "cats", gf.Page.Items[0].Group.Slug)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/groups/dogs/posts", "", nil).Code)

	groups := decode[[]objects.Group](t, s.do(http.MethodGet, "/api/v1/groups", "", nil))
	assert.Len(t, groups, 1)

	w = s.do(http.MethodDelete, "/api/v1/admin/groups/cats", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/admin/users/leo", admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/profiles/leo", "", nil).Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{RPS: 0.001, Burst: 1})
	tok := s.token(1, "leo")

	w := s.do(http.MethodPost, "/api/v1/posts", tok, gin.H{"text": "one"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/v1/posts", tok, gin.H{"text": "two"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/posts", tok, nil).Code)
}
