// Package follow maintains the directed follow graph between identities.
package follow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// Manager creates and removes follow edges
type Manager struct {
	users   *db.UserRepository
	follows *db.FollowRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates a new follow manager
func NewManager(repo *db.Repository) *Manager {
	return &Manager{
		users:   db.NewUserRepository(repo),
		follows: db.NewFollowRepository(repo),
		logger:  logging.WithComponent("follow"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Follow makes followerID follow followedID. Following an identity twice is a
// no-op; following yourself is rejected.
func (m *Manager) Follow(ctx context.Context, followerID, followedID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "follow.Follow", trace.WithAttributes(
		attribute.Int64("follower_id", followerID),
		attribute.Int64("followed_id", followedID),
	))
	defer span.End()

	if followerID == followedID {
		return fmt.Errorf("cannot follow yourself: %w", models.ErrInvalidOperation)
	}

	created, err := m.follows.Create(ctx, followerID, followedID, m.now())
	if err != nil {
		return fmt.Errorf("failed to follow %d: %w", followedID, err)
	}
	if created {
		telemetry.RecordFollowChange(ctx, "follow")
		m.logger.Debug("Follow edge created",
			zap.Int64("follower_id", followerID),
			zap.Int64("followed_id", followedID))
	}
	return nil
}

// Unfollow removes the edge if it exists
func (m *Manager) Unfollow(ctx context.Context, followerID, followedID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "follow.Unfollow", trace.WithAttributes(
		attribute.Int64("follower_id", followerID),
		attribute.Int64("followed_id", followedID),
	))
	defer span.End()

	deleted, err := m.follows.Delete(ctx, followerID, followedID)
	if err != nil {
		return fmt.Errorf("failed to unfollow %d: %w", followedID, err)
	}
	if deleted {
		telemetry.RecordFollowChange(ctx, "unfollow")
		m.logger.Debug("Follow edge removed",
			zap.Int64("follower_id", followerID),
			zap.Int64("followed_id", followedID))
	}
	return nil
}

// IsFollowing reports whether followerID follows followedID
func (m *Manager) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return m.follows.Exists(ctx, followerID, followedID)
}

// Counts returns how many identities follow userID and how many it follows
func (m *Manager) Counts(ctx context.Context, userID int64) (followers, following int64, err error) {
	if followers, err = m.follows.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	if following, err = m.follows.CountFollowing(ctx, userID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// FollowUsername resolves username and follows it
func (m *Manager) FollowUsername(ctx context.Context, followerID int64, username string) error {
	target, err := m.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return m.Follow(ctx, followerID, target.ID)
}

// UnfollowUsername resolves username and unfollows it
func (m *Manager) UnfollowUsername(ctx context.Context, followerID int64, username string) error {
	target, err := m.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return m.Unfollow(ctx, followerID, target.ID)
}
