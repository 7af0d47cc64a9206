package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/s3types"
)

// cacheContract runs the behaviour every s3types.Cache must share.
func cacheContract(t *testing.T, c s3types.Cache) {
	t.Helper()

	_, ok := c.Get("media", "missing.txt")
	assert.False(t, ok)

	item := &s3types.Item{
		Bucket:      "media",
		Key:         "docs/a.txt",
		Body:        []byte("hello"),
		ContentType: "text/plain",
		Metadata:    map[string]string{"author": "me"},
	}
	require.NoError(t, c.Set("media", "docs/a.txt", item))

	got, ok := c.Get("media", "docs/a.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got.Body)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.Equal(t, "me", got.Metadata["author"])

	// same key in another bucket is a different entry
	_, ok = c.Get("archive", "docs/a.txt")
	assert.False(t, ok)

	// metadata-only marker
	require.NoError(t, c.Set("media", "docs/", &s3types.Item{Bucket: "media", Key: "docs/"}))
	marker, ok := c.Get("media", "docs/")
	require.True(t, ok)
	assert.False(t, marker.HasBody())

	// an empty object still has content
	require.NoError(t, c.Set("media", "empty.txt", &s3types.Item{Bucket: "media", Key: "empty.txt", Body: []byte{}}))
	empty, ok := c.Get("media", "empty.txt")
	require.True(t, ok)
	assert.True(t, empty.HasBody())
	assert.Empty(t, empty.Body)

	require.NoError(t, c.Delete("media", "docs/a.txt"))
	_, ok = c.Get("media", "docs/a.txt")
	assert.False(t, ok)

	assert.NoError(t, c.Delete("media", "never-set"))
}

func TestMemory_Contract(t *testing.T) {
	cacheContract(t, NewMemory(time.Minute, 0))
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	c := NewMemory(0, 0)
	require.NoError(t, c.Set("b", "k", &s3types.Item{Key: "k", ContentType: "text/plain"}))

	got, _ := c.Get("b", "k")
	got.ContentType = "changed"

	again, _ := c.Get("b", "k")
	assert.Equal(t, "text/plain", again.ContentType)
}

func TestMemory_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("b", "k", &s3types.Item{Key: "k"}))
	_, ok := c.Get("b", "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("b", "k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemory_Eviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Hour, 3)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set("b", fmt.Sprint(i), &s3types.Item{}))
		now = now.Add(time.Second)
	}
	assert.Equal(t, 3, c.Len())

	// overwriting an existing key never evicts
	require.NoError(t, c.Set("b", "2", &s3types.Item{ContentType: "x"}))
	assert.Equal(t, 3, c.Len())

	require.NoError(t, c.Set("b", "3", &s3types.Item{}))
	assert.Equal(t, 3, c.Len())

	_, ok := c.Get("b", "0")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("b", "3")
	assert.True(t, ok)
}

func TestMemory_SetNilDeletes(t *testing.T) {
	c := NewMemory(0, 0)
	require.NoError(t, c.Set("b", "k", &s3types.Item{}))
	require.NoError(t, c.Set("b", "k", nil))
	_, ok := c.Get("b", "k")
	assert.False(t, ok)
}

func newTestBadger(t *testing.T, ttl time.Duration) *Badger {
	t.Helper()
	c, err := NewBadger(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBadger_Contract(t *testing.T) {
	cacheContract(t, newTestBadger(t, time.Hour))
}

func TestBadger_OpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	c, err := OpenBadger(dir, 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("b", "k", &s3types.Item{Key: "k", ContentLength: 42}))
	require.NoError(t, c.Close())

	reopened, err := OpenBadger(dir, 0)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("b", "k")
	require.True(t, ok)
	assert.Equal(t, int64(42), got.ContentLength)
}
