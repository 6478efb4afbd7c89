// Package authoring creates and edits posts and comments, and carries the
// administrative writes on groups and identities.
package authoring

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// PostInput carries the mutable fields of a post.
type PostInput struct {
	Text    string
	GroupID *int64 // nil files the post under no group
	// Image is a blob store reference. On edit nil keeps the current image
	// and an empty string clears it.
	Image *string
}

// Service implements the write side of posts, comments, groups and identities
type Service struct {
	repo     *db.Repository
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new authoring service
func NewService(repo *db.Repository) *Service {
	return &Service{
		repo:     repo,
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		logger:   logging.WithComponent("authoring"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("text is required: %w", models.ErrInvalidOperation)
	}
	return text, nil
}

func groupRef(ctx context.Context, groups *db.GroupRepository, id *int64) (sql.NullInt64, error) {
	if id == nil {
		return sql.NullInt64{}, nil
	}
	if _, err := groups.GetByID(ctx, *id); err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: *id, Valid: true}, nil
}

// EnsureUser records an authenticated identity
func (s *Service) EnsureUser(ctx context.Context, id int64, username string) (*models.User, error) {
	if id <= 0 || strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("identity needs an id and a username: %w", models.ErrInvalidOperation)
	}
	return s.users.Ensure(ctx, id, username)
}

// CreatePost publishes a new post owned by authorID
func (s *Service) CreatePost(ctx context.Context, authorID int64, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "authoring.CreatePost", trace.WithAttributes(attribute.Int64("author_id", authorID)))
	defer span.End()

	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}
	group, err := groupRef(ctx, s.groups, in.GroupID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:  authorID,
		Text:      text,
		GroupID:   group,
		CreatedAt: s.now(),
	}
	if in.Image != nil {
		post.Image = *in.Image
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	telemetry.RecordPostCreated(ctx)
	s.logger.Info("Post created", zap.Int64("post_id", post.ID), zap.Int64("author_id", authorID))

	return s.posts.GetByID(ctx, post.ID)
}

// EditPost replaces the text, group and image of a post. Only its author may
// edit it; the author and creation time never change.
func (s *Service) EditPost(ctx context.Context, requesterID, postID int64, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "authoring.EditPost", trace.WithAttributes(
		attribute.Int64("requester_id", requesterID),
		attribute.Int64("post_id", postID),
	))
	defer span.End()

	err := s.repo.Transaction(ctx, func(tx *db.Repository) error {
		posts := db.NewPostRepository(tx)
		post, err := posts.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != requesterID {
			return fmt.Errorf("post %d belongs to another author: %w", postID, models.ErrPermissionDenied)
		}
		text, err := normalizeText(in.Text)
		if err != nil {
			return err
		}

		group, err := groupRef(ctx, db.NewGroupRepository(tx), in.GroupID)
		if err != nil {
			return err
		}
		post.Text = text
		post.GroupID = group
		if in.Image != nil {
			post.Image = *in.Image
		}
		return posts.UpdateContent(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Post edited", zap.Int64("post_id", postID))
	return s.posts.GetByID(ctx, postID)
}

// CreateComment adds a comment to a post. Any identity may comment.
func (s *Service) CreateComment(ctx context.Context, authorID, postID int64, text string) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "authoring.CreateComment", trace.WithAttributes(
		attribute.Int64("author_id", authorID),
		attribute.Int64("post_id", postID),
	))
	defer span.End()

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	telemetry.RecordCommentCreated(ctx)
	return comment, nil
}

// CreateGroup adds a group. A slug already in use is a constraint violation.
func (s *Service) CreateGroup(ctx context.Context, title, slug, description string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > models.GroupTitleMaxLen {
		return nil, fmt.Errorf("title must be 1-%d characters: %w", models.GroupTitleMaxLen, models.ErrInvalidOperation)
	}
	if !models.ValidSlug(slug) {
		return nil, fmt.Errorf("slug %q is not a URL-safe slug of at most %d characters: %w", slug, models.GroupSlugMaxLen, models.ErrInvalidOperation)
	}

	group := &models.Group{Title: title, Slug: slug}
	if description = strings.TrimSpace(description); description != "" {
		group.Description = sql.NullString{String: description, Valid: true}
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group %s: %w", slug, err)
	}

	s.logger.Info("Group created", zap.String("slug", slug))
	return group, nil
}

// DeleteGroup removes a group; its posts lose their group
func (s *Service) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, group.ID); err != nil {
		return err
	}
	s.logger.Info("Group deleted", zap.String("slug", slug))
	return nil
}

// DeleteUser removes an identity with its posts, comments and follow edges
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("username", username))
	return nil
}
