package featureflags

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"route-optimization-service/internal/testutil"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const flag = "isAddExtraWorkEventsEnabled"

func newSqliteStore(t *testing.T) *SqliteFlagStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(context.Background(), db))
	return NewSqliteFlagStore(db)
}

func TestSqliteFlagStoreOfficeOverridesDefault(t *testing.T) {
	ctx := context.Background()
	store := newSqliteStore(t)

	require.NoError(t, store.SetFlag(ctx, AllOffices, flag, true))
	require.NoError(t, store.SetFlag(ctx, 2, flag, false))

	enabled, err := store.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = store.IsFeatureEnabledForOffice(ctx, 2, flag)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = store.IsFeatureEnabledForOffice(ctx, 1, "unknownFlag")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSqliteFlagStoreSetFlagReplaces(t *testing.T) {
	ctx := context.Background()
	store := newSqliteStore(t)

	require.NoError(t, store.SetFlag(ctx, 3, flag, true))
	require.NoError(t, store.SetFlag(ctx, 3, flag, false))

	enabled, err := store.IsFeatureEnabledForOffice(ctx, 3, flag)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSeedFromJSON(t *testing.T) {
	ctx := context.Background()
	store := newSqliteStore(t)

	path := filepath.Join(t.TempDir(), "flags.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"office_id": 0, "flag": "isAddExtraWorkEventsEnabled", "enabled": false},
		{"office_id": 5, "flag": " isAddExtraWorkEventsEnabled ", "enabled": true}
	]`), 0o600))

	require.NoError(t, SeedFromJSON(ctx, store, path))

	enabled, err := store.IsFeatureEnabledForOffice(ctx, 5, flag)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = store.IsFeatureEnabledForOffice(ctx, 6, flag)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSeedFromJSONRejectsEmptyFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"office_id": 1, "flag": "  ", "enabled": true}]`), 0o600))

	err := SeedFromJSON(context.Background(), newSqliteStore(t), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func newCache(t *testing.T, next *countingFlags) (*RedisCachedFlags, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisCachedFlags(next, rdb, time.Minute, logger), mr
}

// countingFlags wraps a stub and counts lookups safely across goroutines.
type countingFlags struct {
	stub  testutil.StubFlags
	delay time.Duration
	calls atomic.Int32
	mu    sync.Mutex
}

func (f *countingFlags) IsFeatureEnabledForOffice(ctx context.Context, officeID int, flag string) (bool, error) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stub.IsFeatureEnabledForOffice(ctx, officeID, flag)
}

func enabledFor(officeID int) *countingFlags {
	return &countingFlags{stub: testutil.StubFlags{Enabled: map[int]map[string]bool{officeID: {flag: true}}}}
}

func TestRedisCachedFlagsReadThrough(t *testing.T) {
	ctx := context.Background()
	next := enabledFor(1)
	cache, mr := newCache(t, next)

	for i := 0; i < 3; i++ {
		enabled, err := cache.IsFeatureEnabledForOffice(ctx, 1, flag)
		require.NoError(t, err)
		assert.True(t, enabled)
	}
	assert.Equal(t, int32(1), next.calls.Load())

	got, err := mr.Get(cacheKey(1, flag))
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	enabled, err := cache.IsFeatureEnabledForOffice(ctx, 2, flag)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestRedisCachedFlagsExpire(t *testing.T) {
	ctx := context.Background()
	next := enabledFor(1)
	cache, mr := newCache(t, next)

	_, err := cache.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestRedisCachedFlagsInvalidate(t *testing.T) {
	ctx := context.Background()
	next := enabledFor(1)
	cache, _ := newCache(t, next)

	_, err := cache.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, 1, flag))
	_, err = cache.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestRedisCachedFlagsSetFlagInvalidatesDefault(t *testing.T) {
	ctx := context.Background()
	store := newSqliteStore(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := NewRedisCachedFlags(store, rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, office := range []int{1, 2} {
		enabled, err := cache.IsFeatureEnabledForOffice(ctx, office, flag)
		require.NoError(t, err)
		assert.False(t, enabled)
	}
	require.True(t, mr.Exists(cacheKey(2, flag)))

	require.NoError(t, cache.SetFlag(ctx, AllOffices, flag, true))
	assert.False(t, mr.Exists(cacheKey(1, flag)))
	assert.False(t, mr.Exists(cacheKey(2, flag)))

	for _, office := range []int{1, 2} {
		enabled, err := cache.IsFeatureEnabledForOffice(ctx, office, flag)
		require.NoError(t, err)
		assert.True(t, enabled)
	}

	require.NoError(t, cache.SetFlag(ctx, 2, flag, false))
	assert.True(t, mr.Exists(cacheKey(1, flag)))
	enabled, err := cache.IsFeatureEnabledForOffice(ctx, 2, flag)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRedisCachedFlagsSetFlagNeedsWritableStore(t *testing.T) {
	cache, _ := newCache(t, enabledFor(1))
	err := cache.SetFlag(context.Background(), 1, flag, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestRedisCachedFlagsFallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	next := enabledFor(1)
	cache, mr := newCache(t, next)
	mr.Close()

	enabled, err := cache.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestRedisCachedFlagsDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := &countingFlags{stub: testutil.StubFlags{Err: errors.New("db down")}}
	cache, mr := newCache(t, next)

	_, err := cache.IsFeatureEnabledForOffice(ctx, 1, flag)
	require.Error(t, err)
	assert.False(t, mr.Exists(cacheKey(1, flag)))
}

func TestRedisCachedFlagsSharesConcurrentMisses(t *testing.T) {
	next := enabledFor(1)
	next.delay = 50 * time.Millisecond
	cache, _ := newCache(t, next)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enabled, err := cache.IsFeatureEnabledForOffice(context.Background(), 1, flag)
			assert.NoError(t, err)
			assert.True(t, enabled)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}
