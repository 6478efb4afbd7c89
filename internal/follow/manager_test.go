package follow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/db/dbtest"
	"github.com/yatube/yatube/internal/models"
)

func setup(t *testing.T) (*Manager, *db.FollowRepository) {
	repo := dbtest.Repository(t)
	users := db.NewUserRepository(repo)
	for id, name := range map[int64]string{1: "a", 2: "b", 3: "c"} {
		_, err := users.Ensure(context.Background(), id, name)
		require.NoError(t, err)
	}
	return NewManager(repo), db.NewFollowRepository(repo)
}

func TestFollow_Idempotent(t *testing.T) {
	m, follows := setup(t)
	ctx := context.Background()

	require.NoError(t, m.Follow(ctx, 1, 2))
	require.NoError(t, m.Follow(ctx, 1, 2))

	n, err := follows.CountFollowers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := m.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.IsFollowing(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollow_Self(t *testing.T) {
	m, follows := setup(t)
	ctx := context.Background()

	err := m.Follow(ctx, 1, 1)
	assert.ErrorIs(t, err, models.ErrInvalidOperation)

	n, err := follows.CountFollowers(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFollow_UnknownIdentity(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, m.Follow(ctx, 1, 99), models.ErrConstraintViolation)
	assert.ErrorIs(t, m.FollowUsername(ctx, 1, "ghost"), models.ErrNotFound)
	assert.ErrorIs(t, m.UnfollowUsername(ctx, 1, "ghost"), models.ErrNotFound)
}

func TestUnfollow(t *testing.T) {
	m, follows := setup(t)
	ctx := context.Background()

	// No edge yet: still succeeds.
	require.NoError(t, m.Unfollow(ctx, 1, 2))

	require.NoError(t, m.FollowUsername(ctx, 1, "b"))
	require.NoError(t, m.UnfollowUsername(ctx, 1, "b"))
	require.NoError(t, m.Unfollow(ctx, 1, 2))

	n, err := follows.CountFollowers(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFollow_Concurrent(t *testing.T) {
	m, follows := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Follow(ctx, 3, 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := follows.CountFollowers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCounts(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, m.Follow(ctx, 1, 2))
	require.NoError(t, m.Follow(ctx, 3, 2))
	require.NoError(t, m.Follow(ctx, 2, 1))

	followers, following, err := m.Counts(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)
	assert.Equal(t, int64(1), following)
}
