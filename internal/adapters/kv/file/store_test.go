package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewStoreAt(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "pulse:v1:teams", []byte(`[{"teamId":"t-1"}]`)))
	require.NoError(t, store.Set(context.Background(), "pulse:v1:users:t-1", []byte(`[]`)))

	got, err := store.Get(context.Background(), "pulse:v1:teams")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"teamId":"t-1"}]`, string(got))
}

func TestStoreGetMissingKeyReturnsNotFound(t *testing.T) {
	t.Parallel()

	store, err := NewStoreAt(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "pulse:v1:teams")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreKeysFiltersByPrefix(t *testing.T) {
	t.Parallel()

	store, err := NewStoreAt(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "pulse:v1:sessions:t-1:u-1:r-1", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "pulse:v1:sessions:t-1:u-1:r-2", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "pulse:v1:sessions:t-1:u-2:r-3", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "pulse:v1:lastSession:t-1:u-1", []byte(`{}`)))

	keys, err := store.Keys(ctx, "pulse:v1:sessions:t-1:u-1:")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pulse:v1:sessions:t-1:u-1:r-1",
		"pulse:v1:sessions:t-1:u-1:r-2",
	}, keys)
}

func TestStoreMissingFileBehavesAsEmpty(t *testing.T) {
	t.Parallel()

	store, err := NewStoreAt(filepath.Join(t.TempDir(), "missing", "store.json"))
	require.NoError(t, err)

	keys, err := store.Keys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStoreMalformedFileReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries": [`), 0o600))

	store, err := NewStoreAt(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "pulse:v1:teams")
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode store file")
}

func TestStoreFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 999, "entries": {}}`), 0o600))

	store, err := NewStoreAt(path)
	require.NoError(t, err)

	_, err = store.Keys(context.Background(), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported store schema version")
}

func TestStoreSetCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	store, err := NewStore(viper.New())
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "pulse:v1:teams", []byte(`[]`)))

	storePath := filepath.Join(homeDir, ".teampulse", "store.json")
	info, err := os.Stat(storePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreWritesDefaultConfigOnFirstUse(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	_, err := NewStore(viper.New())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(homeDir, ".teampulse", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[store]")
	assert.Contains(t, string(data), "path = ")
}

func TestStoreHonorsConfiguredPath(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "custom", "data.json")
	config := viper.New()
	config.Set("store.path", storePath)

	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	store, err := NewStore(config)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "pulse:v1:teams", []byte(`[]`)))

	_, err = os.Stat(storePath)
	require.NoError(t, err)
}

func TestStoreSerializedFileIncludesVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewStoreAt(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "pulse:v1:teams", []byte(`[]`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 1`)
}

func TestStoreSetCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	store, err := NewStoreAt(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Set(ctx, "pulse:v1:teams", []byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStoreConcurrentSetsAcrossInstancesPreserveAllKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")

	newStore := func() *Store {
		store, err := NewStoreAt(path)
		require.NoError(t, err)
		return store
	}

	storeA := newStore()
	storeB := newStore()

	const perStoreWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perStoreWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perStoreWrites; i++ {
			errCh <- storeA.Set(context.Background(), "pulse:v1:a:"+strconv.Itoa(i), []byte(`{}`))
		}
	}()

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perStoreWrites; i++ {
			errCh <- storeB.Set(context.Background(), "pulse:v1:b:"+strconv.Itoa(i), []byte(`{}`))
		}
	}()

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	keys, err := storeA.Keys(context.Background(), "pulse:v1:")
	require.NoError(t, err)
	assert.Len(t, keys, perStoreWrites*2)
}
