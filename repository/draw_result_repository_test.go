package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"lottery/domain/entities"
	"lottery/domain/services"
	"lottery/repository/testutil"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawResultRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDrawResultRepository(testDB.DB)
	ctx := context.Background()
	roster := testutil.CreateTestRoster(10)

	t.Run("empty store", func(t *testing.T) {
		testDB.Truncate(t)

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.Load(ctx)
		assert.True(t, errors.Is(err, entities.ErrNotFound))

		assert.True(t, errors.Is(repo.Clear(ctx), entities.ErrNotFound))
	})

	t.Run("commit then load round trips winners in order", func(t *testing.T) {
		testDB.Truncate(t)
		result := testutil.CreateTestResult(roster, 3)
		result.Winners[0], result.Winners[2] = result.Winners[2], result.Winners[0]

		require.NoError(t, repo.Commit(ctx, result))

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.ID, loaded.ID)
		assert.Equal(t, result.WinnerIDs(), loaded.WinnerIDs())
		assert.Equal(t, result.Winners[1].Fields, loaded.Winners[1].Fields)
		assert.Equal(t, roster.Columns, loaded.Columns)
		assert.Equal(t, 3, loaded.RequestedCount)
		assert.Equal(t, 10, loaded.RosterSize)
		assert.True(t, result.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("engine result equals the stored result", func(t *testing.T) {
		testDB.Truncate(t)
		clock := time.Date(2025, 3, 1, 12, 0, 0, 987654321, time.UTC)
		engine := services.NewDrawEngine(
			roster,
			repo,
			services.NewAuthorizer("operator", "reset"),
			nil,
			services.WithClock(func() time.Time { return clock }),
		)

		result, err := engine.PickWinners(ctx, entities.DrawRequest{RequestedCount: 4})
		require.NoError(t, err)

		current, err := engine.CurrentResult(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.ID, current.ID)
		assert.Equal(t, result.WinnerIDs(), current.WinnerIDs())
		assert.Equal(t, result.CreatedAt.UnixNano(), current.CreatedAt.UnixNano())
	})

	t.Run("second commit is refused and keeps the first", func(t *testing.T) {
		testDB.Truncate(t)
		first := testutil.CreateTestResult(roster, 2)
		second := testutil.CreateTestResult(roster, 4)

		require.NoError(t, repo.Commit(ctx, first))
		assert.True(t, errors.Is(repo.Commit(ctx, second), entities.ErrAlreadyLocked))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, loaded.ID)
	})

	t.Run("invalid result is not stored", func(t *testing.T) {
		testDB.Truncate(t)
		result := testutil.CreateTestResult(roster, 2)
		result.Winners[1] = result.Winners[0]

		require.Error(t, repo.Commit(ctx, result))

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("clear unlocks the round", func(t *testing.T) {
		testDB.Truncate(t)
		result := testutil.CreateTestResult(roster, 2)
		require.NoError(t, repo.Commit(ctx, result))

		require.NoError(t, repo.Clear(ctx))

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)
		assert.True(t, errors.Is(repo.Clear(ctx), entities.ErrNotFound))

		_, err = repo.Load(ctx)
		assert.True(t, errors.Is(err, entities.ErrNotFound))

		// A new round can be committed after the clear
		require.NoError(t, repo.Commit(ctx, testutil.CreateTestResult(roster, 1)))
	})

	t.Run("concurrent commits lock exactly once", func(t *testing.T) {
		testDB.Truncate(t)

		var committed, refused atomic.Int32
		var wg conc.WaitGroup
		for i := 0; i < 10; i++ {
			result := testutil.CreateTestResult(roster, 1+i%5)
			wg.Go(func() {
				err := repo.Commit(ctx, result)
				switch {
				case err == nil:
					committed.Add(1)
				case errors.Is(err, entities.ErrAlreadyLocked):
					refused.Add(1)
				default:
					t.Errorf("unexpected commit error: %v", err)
				}
			})
		}
		wg.Wait()

		assert.Equal(t, int32(1), committed.Load())
		assert.Equal(t, int32(9), refused.Load())
	})
}
