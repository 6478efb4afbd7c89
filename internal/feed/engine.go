// Package feed builds the ordered, paginated post listings.
package feed

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/telemetry"
)

// postSource adapts a repository filter to a Source.
type postSource struct {
	posts  *db.PostRepository
	filter db.PostFilter
}

func (s postSource) Count(ctx context.Context) (int64, error) {
	return s.posts.Count(ctx, s.filter)
}

func (s postSource) Slice(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	return s.posts.List(ctx, s.filter, offset, limit)
}

// Engine answers every read-only listing query. All listings share one
// ordering: newest first, ties broken by the higher id.
type Engine struct {
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
}

// NewEngine creates a listing engine over repo
func NewEngine(repo *db.Repository) *Engine {
	return &Engine{
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
	}
}

func (e *Engine) source(f db.PostFilter) Source {
	return postSource{posts: e.posts, filter: f}
}

// ListAll returns a page of every post
func (e *Engine) ListAll(ctx context.Context, page int) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.ListAll", trace.WithAttributes(attribute.Int("page", page)))
	defer span.End()

	return Paginate(ctx, e.source(db.PostFilter{}), page)
}

// ListByGroup returns the group and a page of its posts
func (e *Engine) ListByGroup(ctx context.Context, slug string, page int) (*models.Group, *Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.ListByGroup", trace.WithAttributes(attribute.String("slug", slug)))
	defer span.End()

	group, err := e.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	p, err := Paginate(ctx, e.source(db.PostFilter{GroupID: group.ID}), page)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list group %s: %w", slug, err)
	}
	return group, p, nil
}

// ListByAuthor returns the author and a page of their posts
func (e *Engine) ListByAuthor(ctx context.Context, username string, page int) (*models.User, *Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.ListByAuthor", trace.WithAttributes(attribute.String("username", username)))
	defer span.End()

	author, err := e.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	p, err := Paginate(ctx, e.source(db.PostFilter{AuthorID: author.ID}), page)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list author %s: %w", username, err)
	}
	return author, p, nil
}

// ListFollowingFeed returns a page of posts by every author followerID follows.
// An identity that follows nobody gets one empty page.
func (e *Engine) ListFollowingFeed(ctx context.Context, followerID int64, page int) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.ListFollowingFeed", trace.WithAttributes(attribute.Int64("follower_id", followerID)))
	defer span.End()

	return Paginate(ctx, e.source(db.PostFilter{FollowerID: followerID}), page)
}

// Post returns a single post with author and group
func (e *Engine) Post(ctx context.Context, id int64) (*models.Post, error) {
	return e.posts.GetByID(ctx, id)
}

// Comments returns a post's comments oldest first
func (e *Engine) Comments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return e.comments.ListByPost(ctx, postID)
}

// AuthorPostCount returns how many posts an identity has written
func (e *Engine) AuthorPostCount(ctx context.Context, authorID int64) (int64, error) {
	return e.posts.CountByAuthor(ctx, authorID)
}

// Groups returns every group ordered by title
func (e *Engine) Groups(ctx context.Context) ([]*models.Group, error) {
	return e.groups.List(ctx)
}
