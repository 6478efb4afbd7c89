// Package objects holds the JSON shapes the API returns.
package objects

import (
	"time"

	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/models"
)

// Group is a group as rendered in listings and group pages
type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Post is a post with its author name and group resolved
type Post struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	AuthorID  int64     `json:"author_id"`
	Group     *Group    `json:"group"`
	Image     string    `json:"image"`
}

// Comment is a comment with its author name resolved
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Author    string    `json:"author"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is one page of a post listing
type Page struct {
	Number      int    `json:"number"`
	NumPages    int    `json:"num_pages"`
	Count       int64  `json:"count"`
	HasNext     bool   `json:"has_next"`
	HasPrevious bool   `json:"has_previous"`
	Items       []Post `json:"items"`
}

// GroupFeed is the group page
type GroupFeed struct {
	Group Group `json:"group"`
	Page  Page  `json:"page"`
}

// Profile is an author's page as seen by a viewer
type Profile struct {
	Author         string `json:"author"`
	AuthorID       int64  `json:"author_id"`
	PostCount      int64  `json:"post_count"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	Following      bool   `json:"following"`
	Page           Page   `json:"page"`
}

// CommentForm is the empty placeholder shown under a post
type CommentForm struct {
	Text string `json:"text"`
}

// PostDetail is a single post with its discussion
type PostDetail struct {
	Post            Post        `json:"post"`
	AuthorPostCount int64       `json:"author_post_count"`
	Comments        []Comment   `json:"comments"`
	CommentForm     CommentForm `json:"comment_form"`
}

// NewGroup converts a group
func NewGroup(g *models.Group) Group {
	return Group{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description.String,
	}
}

// NewGroups converts a group list
func NewGroups(groups []*models.Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, NewGroup(g))
	}
	return out
}

// NewPost converts a post. Author and Group must be loaded.
func NewPost(p *models.Post) Post {
	obj := Post{
		ID:        p.ID,
		Text:      p.Text,
		CreatedAt: p.CreatedAt,
		AuthorID:  p.AuthorID,
		Image:     p.Image,
	}
	if p.Author != nil {
		obj.Author = p.Author.Username
	}
	if p.Group != nil {
		g := NewGroup(p.Group)
		obj.Group = &g
	}
	return obj
}

// NewComment converts a comment. Author must be loaded.
func NewComment(c *models.Comment) Comment {
	obj := Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if c.Author != nil {
		obj.Author = c.Author.Username
	}
	return obj
}

// NewComments converts a comment list
func NewComments(comments []*models.Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewComment(c))
	}
	return out
}

// NewPage converts a listing page
func NewPage(p *feed.Page) Page {
	items := make([]Post, 0, len(p.Posts))
	for _, post := range p.Posts {
		items = append(items, NewPost(post))
	}
	return Page{
		Number:      p.Number,
		NumPages:    p.NumPages,
		Count:       p.Count,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
		Items:       items,
	}
}
