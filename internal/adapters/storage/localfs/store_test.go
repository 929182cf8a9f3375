package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissingKey(t *testing.T) {
	s := New(t.TempDir())
	b, ok, err := s.Read(context.Background(), "products")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, b)
}

func TestWriteThenRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := New(dir)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "vouchers", []byte(`[{"code":"HEMAT10"}]`)))
	require.NoError(t, s.Write(ctx, "vouchers", []byte(`[]`)))

	b, ok, err := s.Read(ctx, "vouchers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vouchers.json", entries[0].Name())
}

func TestRejectsPathKeys(t *testing.T) {
	s := New(t.TempDir())
	err := s.Write(context.Background(), "../escape", []byte("x"))
	assert.Error(t, err)
}
