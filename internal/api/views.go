package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yatube/yatube/internal/api/objects"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/follow"
)

// Views assembles the read models shared by the REST and JSON-RPC surfaces.
type Views struct {
	engine  *feed.Engine
	follows *follow.Manager
	pages   *cache.PageCache
}

// Index renders a page of the global feed
func (v *Views) Index(ctx context.Context, page int) (objects.Page, error) {
	p, err := v.engine.ListAll(ctx, page)
	if err != nil {
		return objects.Page{}, err
	}
	return objects.NewPage(p), nil
}

// CachedIndex returns the serialized global feed page through the page cache.
// key must cover every input that changes the output.
func (v *Views) CachedIndex(ctx context.Context, key string, page int) ([]byte, error) {
	return v.pages.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		p, err := v.Index(ctx, page)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	})
}

// GroupPosts renders a group page
func (v *Views) GroupPosts(ctx context.Context, slug string, page int) (objects.GroupFeed, error) {
	group, p, err := v.engine.ListByGroup(ctx, slug, page)
	if err != nil {
		return objects.GroupFeed{}, err
	}
	return objects.GroupFeed{Group: objects.NewGroup(group), Page: objects.NewPage(p)}, nil
}

// Profile renders an author's page. following is only ever true for an
// authenticated viewer looking at someone else.
func (v *Views) Profile(ctx context.Context, viewer *Identity, username string, page int) (objects.Profile, error) {
	author, p, err := v.engine.ListByAuthor(ctx, username, page)
	if err != nil {
		return objects.Profile{}, err
	}

	following := false
	if viewer != nil && viewer.ID != author.ID {
		following, err = v.follows.IsFollowing(ctx, viewer.ID, author.ID)
		if err != nil {
			return objects.Profile{}, fmt.Errorf("failed to check follow state: %w", err)
		}
	}
	followers, followed, err := v.follows.Counts(ctx, author.ID)
	if err != nil {
		return objects.Profile{}, fmt.Errorf("failed to count follows: %w", err)
	}

	return objects.Profile{
		Author:         author.Username,
		AuthorID:       author.ID,
		PostCount:      p.Count,
		FollowerCount:  followers,
		FollowingCount: followed,
		Following:      following,
		Page:           objects.NewPage(p),
	}, nil
}

// PostDetail renders a post with its comments
func (v *Views) PostDetail(ctx context.Context, id int64) (objects.PostDetail, error) {
	post, err := v.engine.Post(ctx, id)
	if err != nil {
		return objects.PostDetail{}, err
	}
	comments, err := v.engine.Comments(ctx, id)
	if err != nil {
		return objects.PostDetail{}, fmt.Errorf("failed to load comments: %w", err)
	}
	count, err := v.engine.AuthorPostCount(ctx, post.AuthorID)
	if err != nil {
		return objects.PostDetail{}, fmt.Errorf("failed to count posts: %w", err)
	}

	return objects.PostDetail{
		Post:            objects.NewPost(post),
		AuthorPostCount: count,
		Comments:        objects.NewComments(comments),
		CommentForm:     objects.CommentForm{},
	}, nil
}

// FollowIndex renders the viewer's following feed
func (v *Views) FollowIndex(ctx context.Context, viewer *Identity, page int) (objects.Page, error) {
	p, err := v.engine.ListFollowingFeed(ctx, viewer.ID, page)
	if err != nil {
		return objects.Page{}, err
	}
	return objects.NewPage(p), nil
}

// Groups renders the group list
func (v *Views) Groups(ctx context.Context) ([]objects.Group, error) {
	groups, err := v.engine.Groups(ctx)
	if err != nil {
		return nil, err
	}
	return objects.NewGroups(groups), nil
}
