package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetAbsentReturnsNilNil(t *testing.T) {
	s := NewMemoryStore()

	v, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestMemoryStore_SetCopiesValue(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	buf := []byte(`"abc"`)
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[1] = 'x'

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`"abc"`), v)

	v[1] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`"abc"`), again)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("1")))
	require.NoError(t, s.Set(ctx, "k", []byte("2")))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)
	require.NoError(t, s.Close())
}
