package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/breeder/internal/genetics"
	testutil "github.com/aristath/breeder/internal/testing"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	db := testutil.NewTestDB(t, "cache")
	c := New(db.Conn(), zerolog.Nop())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	results := []genetics.BreedingResult{
		{Genotype: []string{"Ee", "nZ"}, Probability: 0.25, Percentage: "25"},
		{Genotype: []string{"EE", ""}, Probability: 0.125, Percentage: "12.5"},
	}
	require.NoError(t, c.Set(ctx, "last_roll:equine", results, time.Hour))

	var got []genetics.BreedingResult
	require.NoError(t, c.Get(ctx, "last_roll:equine", &got))
	assert.Equal(t, results, got)
}

func TestCache_Overwrite(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "first", time.Hour))
	require.NoError(t, c.Set(ctx, "k", "second", time.Hour))

	var got string
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "second", got)
}

func TestCache_Expiry(t *testing.T) {
	c, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "long", 2, time.Hour))

	*now = now.Add(2 * time.Minute)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "short", &v), ErrMiss)
	require.NoError(t, c.Get(ctx, "long", &v))
	assert.Equal(t, 2, v)

	removed, err := c.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	var v string
	assert.ErrorIs(t, c.Get(context.Background(), "absent", &v), ErrMiss)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "last_roll:a", 1, time.Hour))
	require.NoError(t, c.Set(ctx, "last_roll:b", 2, time.Hour))
	require.NoError(t, c.Set(ctx, "other", 3, time.Hour))

	require.NoError(t, c.DeleteByPrefix(ctx, "last_roll:"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "last_roll:a", &v), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "last_roll:b", &v), ErrMiss)
	require.NoError(t, c.Get(ctx, "other", &v))

	require.NoError(t, c.Delete(ctx, "other"))
	assert.ErrorIs(t, c.Get(ctx, "other", &v), ErrMiss)
}

func TestCleanupJob(t *testing.T) {
	c, now := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	*now = now.Add(time.Minute)

	job := NewCleanupJob(c)
	assert.Equal(t, "cache_cleanup", job.Name())
	require.NoError(t, job.Run())

	removed, err := c.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRemovedCount(t *testing.T) {
	tests := []struct {
		name    string
		result  fakeResult
		want    int64
		wantErr bool
	}{
		{"rows removed", fakeResult{rows: 3}, 3, false},
		{"nothing removed", fakeResult{}, 0, false},
		{"driver cannot count", fakeResult{rows: 7, err: errors.New("not supported")}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := removedCount(tt.result)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not supported")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, n)
		})
	}
}
