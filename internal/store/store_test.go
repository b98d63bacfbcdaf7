package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, 4, 5000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_AppliesRequestedPoolSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.db")
	s, err := Open(path, 7, 1000)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 7, s.db.Stats().MaxOpenConnections)
}

func TestOpen_SingleConnPoolKeepsOneIdleConn(t *testing.T) {
	assert.Equal(t, 1, maxIdleConns(1))
	assert.Equal(t, 1, maxIdleConns(0))
	assert.Equal(t, 3, maxIdleConns(7))
}

func TestInsertAndGetByPostID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, 42, [3]float64{1, 2, 3}, []byte("sigbytes"))
	require.NoError(t, err)
	assert.Positive(t, id)

	row, err := s.GetByPostID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(42), row.PostID)
	assert.Equal(t, [3]float64{1, 2, 3}, row.AvgLF)
	assert.Equal(t, []byte("sigbytes"), row.Sig)
}

func TestGetByPostID_MissingReturnsNilNil(t *testing.T) {
	s := openTestStore(t)
	row, err := s.GetByPostID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestInsert_ReplacingSamePostIDAssignsFreshID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	firstID, err := s.Insert(ctx, 1, [3]float64{1, 1, 1}, []byte("a"))
	require.NoError(t, err)

	secondID, err := s.Insert(ctx, 1, [3]float64{2, 2, 2}, []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID)

	row, err := s.GetByPostID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, secondID, row.ID)
	assert.Equal(t, []byte("b"), row.Sig)
}

func TestDeleteByPostID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, 5, [3]float64{}, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteByPostID(ctx, 5))

	row, err := s.GetByPostID(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeleteByPostID_UnknownIsNotAnError(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.DeleteByPostID(context.Background(), 12345))
}

func TestForEach_VisitsRowsInAscendingIDOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, postID := range []int64{10, 20, 30} {
		_, err := s.Insert(ctx, postID, [3]float64{}, []byte("x"))
		require.NoError(t, err)
	}

	var seen []int64
	err := s.ForEach(ctx, func(r Row) error {
		seen = append(seen, r.PostID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, seen)
}
