package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to a single transaction.
// Any error returned by fn rolls the whole transaction back.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}

// UserRepository provides identity-reference database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

// Ensure records the identity, renaming it if the provider changed the username.
// An identity already stored under the same username is returned without a write.
func (r *UserRepository) Ensure(ctx context.Context, id int64, username string) (*models.User, error) {
	existing, err := r.GetByID(ctx, id)
	switch {
	case err == nil && existing.Username == username:
		return existing, nil
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	user := &models.User{ID: id, Username: username, CreatedAt: r.db.NowFunc()}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username"}),
		}).
		Create(user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an identity together with its posts, every comment on those
// posts, its own comments and all follow edges touching it.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		db := tx.db
		authored := db.Model(&models.Post{}).Select("id").Where("author_id = ?", id)
		if err := db.Where("author_id = ? OR post_id IN (?)", id, authored).
			Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		if err := db.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("failed to delete posts: %w", err)
		}
		if err := db.Where("follower_id = ? OR followed_id = ?", id, id).
			Delete(&models.Follow{}).Error; err != nil {
			return fmt.Errorf("failed to delete follows: %w", err)
		}
		res := db.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		return nil
	})
}

// GroupRepository provides group-related database operations
type GroupRepository struct {
	*Repository
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(repo *Repository) *GroupRepository {
	return &GroupRepository{Repository: repo}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return translateError(r.db.WithContext(ctx).Create(group).Error)
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("group %d", id))
	}
	return &group, nil
}

// GetBySlug retrieves a group by slug
func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("group %q", slug))
	}
	return &group, nil
}

// List returns every group ordered by title
func (r *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.WithContext(ctx).Order("title ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Delete removes a group; its posts stay and lose their group reference.
func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.Model(&models.Post{}).
			Where("group_id = ?", id).
			Update("group_id", sql.NullInt64{}).Error; err != nil {
			return fmt.Errorf("failed to detach posts: %w", err)
		}
		res := tx.db.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("group %d: %w", id, models.ErrNotFound)
		}
		return nil
	})
}

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	AuthorID   int64
	GroupID    int64
	FollowerID int64 // posts by authors this identity follows
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// GetByID retrieves a post by ID with its author and group loaded
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("post %d", id))
	}
	return &post, nil
}

// GetForUpdate retrieves a post and locks its row for the rest of the transaction
func (r *PostRepository) GetForUpdate(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("post %d", id))
	}
	return &post, nil
}

// UpdateContent writes the mutable fields of a post; author and created_at are never written.
func (r *PostRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
	return translateError(err)
}

// CountByAuthor returns how many posts an identity has authored
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return r.Count(ctx, PostFilter{AuthorID: authorID})
}

func (r *PostRepository) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.GroupID != 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.FollowerID != 0 {
		followed := r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", f.FollowerID)
		q = q.Where("author_id IN (?)", followed)
	}
	return q
}

// Count returns the number of posts matching f
func (r *PostRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var n int64
	if err := r.filtered(ctx, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// List returns posts matching f, newest first with ties broken by id, with
// author and group loaded.
func (r *PostRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.filtered(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

// ListByPost returns a post's comments in chronological order with authors loaded
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// FollowRepository provides follow-edge database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Create inserts the edge unless it already exists. The unique index decides,
// so concurrent callers never produce a duplicate. created reports whether a
// row was written.
func (r *FollowRepository) Create(ctx context.Context, followerID, followedID int64, at time.Time) (created bool, err error) {
	follow := &models.Follow{FollowerID: followerID, FollowedID: followedID, CreatedAt: at}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
			DoNothing: true,
		}).
		Create(follow)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the edge if present. deleted reports whether a row was removed.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID int64) (deleted bool, err error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists checks whether followerID follows followedID
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountFollowers returns how many identities follow userID
func (r *FollowRepository) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountFollowing returns how many identities userID follows
func (r *FollowRepository) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}
