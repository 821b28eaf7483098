package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStorageContract(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, DeviceKey, "first"))
	require.NoError(t, s.Set(ctx, DeviceKey, "second"))
	got, err := s.Get(ctx, DeviceKey)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestMemoryStorage_Contract(t *testing.T) {
	runStorageContract(t, NewMemoryStorage())
}

func TestMemoryStorage_ZeroValueUsable(t *testing.T) {
	var m MemoryStorage
	require.NoError(t, m.Set(context.Background(), "k", "v"))
	got, err := m.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFileStorage_Contract(t *testing.T) {
	runStorageContract(t, NewFileStorage(filepath.Join(t.TempDir(), "nested", "secure.toml")))
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure.toml")
	ctx := context.Background()

	first := NewStore(NewFileStorage(path)).GetOrCreate(ctx)
	second := NewStore(NewFileStorage(path)).GetOrCreate(ctx)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "device_uuid")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileStorage_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secure.toml")
	require.NoError(t, os.WriteFile(path, []byte("device_uuid = ["), 0o600))

	_, err := NewFileStorage(path).Get(context.Background(), DeviceKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage_Contract(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorageFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })

	runStorageContract(t, s)
	assert.True(t, mr.Exists("roachagram:"+DeviceKey))
}

func TestRedisStorage_UnavailableFallsBack(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	s := NewRedisStorage(mr.Addr())
	t.Cleanup(func() { _ = s.Close() })
	mr.Close()

	_, err = s.Get(context.Background(), DeviceKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	store := NewStore(s)
	id := store.GetOrCreate(context.Background())
	assert.Equal(t, id, store.GetOrCreate(context.Background()))
}

func TestEncrypted_Contract(t *testing.T) {
	enc, err := NewEncrypted(NewMemoryStorage(), newKey(t))
	require.NoError(t, err)
	runStorageContract(t, enc)
}

func TestEncrypted_HidesPlaintext(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStorage()
	enc, err := NewEncrypted(inner, newKey(t))
	require.NoError(t, err)

	require.NoError(t, enc.Set(ctx, DeviceKey, "3f0c6a4e-secret"))
	sealed, err := inner.Get(ctx, DeviceKey)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "secret")

	got, err := enc.Get(ctx, DeviceKey)
	require.NoError(t, err)
	assert.Equal(t, "3f0c6a4e-secret", got)
}

func TestEncrypted_WrongKeyFails(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStorage()
	writer, err := NewEncrypted(inner, newKey(t))
	require.NoError(t, err)
	require.NoError(t, writer.Set(ctx, DeviceKey, "value"))

	reader, err := NewEncrypted(inner, newKey(t))
	require.NoError(t, err)
	_, err = reader.Get(ctx, DeviceKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestEncrypted_RejectsShortKey(t *testing.T) {
	_, err := NewEncrypted(NewMemoryStorage(), []byte("short"))
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := newKey(t)

	got, err := ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = ParseKey(" " + base64.StdEncoding.EncodeToString(key) + " ")
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)

	_, err = ParseKey(strings.Repeat("z", 10))
	assert.Error(t, err)
}
