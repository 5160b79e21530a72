package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV - общий сценарий для всех бэкендов
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "tasks", []byte(`[{"id":"1"}]`)))
	got, err := kv.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, kv.Set(ctx, "tasks", []byte(`[]`)))
	got, err = kv.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))

	require.NoError(t, kv.Delete(ctx, "tasks"))
	_, err = kv.Get(ctx, "tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	// Удаление отсутствующего ключа - не ошибка
	assert.NoError(t, kv.Delete(ctx, "currentUser"))
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	value := []byte(`"a"`)
	require.NoError(t, kv.Set(ctx, "k", value))
	value[1] = 'b'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(got))
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(filepath.Join(dir, "board"))
	require.NoError(t, err)
	exerciseKV(t, kv)

	entries, err := os.ReadDir(filepath.Join(dir, "board"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files should be left behind")
}

func TestFile_RejectsPathKeys(t *testing.T) {
	kv, err := NewFile(t.TempDir())
	require.NoError(t, err)

	err = kv.Set(context.Background(), "../escape", []byte(`1`))
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	kv, err := NewRedis(RedisConfig{Address: mr.Addr(), Prefix: "board:"})
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)

	require.NoError(t, kv.Set(context.Background(), "users", []byte(`[]`)))
	assert.True(t, mr.Exists("board:users"))
	assert.Zero(t, mr.TTL("board:users"))
}

func TestRedis_ConnectionFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedis(RedisConfig{Address: addr})
	assert.Error(t, err)
}
