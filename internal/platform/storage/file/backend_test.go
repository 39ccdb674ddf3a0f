package file

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestBackend_RoundTripAndClear(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b, err := NewBackend(fsys, "/state")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "dev:token", `"abc"`))
	require.NoError(t, b.Set(ctx, "dev:user", `{"ID":1}`))
	require.NoError(t, b.Set(ctx, "other:user", `{"ID":2}`))

	got, ok, err := b.Get(ctx, "dev:token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"abc"`, got)

	require.NoError(t, b.Clear(ctx, "dev:"))

	_, ok, err = b.Get(ctx, "dev:user")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = b.Get(ctx, "other:user")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBackend_DeleteMissingKey(t *testing.T) {
	b, err := NewBackend(afero.NewMemMapFs(), "/state")
	require.NoError(t, err)
	require.NoError(t, b.Delete(context.Background(), "missing"))
}

func TestBackend_LeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b, err := NewBackend(fsys, "/state")
	require.NoError(t, err)
	require.NoError(t, b.Set(context.Background(), "k", "1"))

	entries, err := afero.ReadDir(fsys, "/state")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "k.json", entries[0].Name())
}
