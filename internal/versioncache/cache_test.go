package versioncache

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdrop/internal/kv"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*Store, *kv.MemoryStore, *clock) {
	mem := kv.NewMemory()
	c := &clock{t: time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)}
	s := New(mem, VersionsPrefix, ttl)
	s.Now = c.now
	return s, mem, c
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "2026.2.6", ScopeKey(" 2026.2.6 "))
	assert.Equal(t, "openclaw_2026.2.6", ScopeKey("openclaw@2026.2.6"))
	assert.Equal(t, "a_b_c", ScopeKey("a b/c"))
	assert.Equal(t, "unknown", ScopeKey(""))
	assert.Equal(t, "unknown", ScopeKey("   "))
}

func TestWriteThenRead(t *testing.T) {
	s, mem, c := newTestStore(time.Hour)

	require.NoError(t, s.Write("default", []string{"latest", "1.2.0", "1.1.0"}))

	entry, ok := s.Read("default")
	require.True(t, ok)
	assert.Equal(t, []string{"latest", "1.2.0", "1.1.0"}, entry.Tokens)
	assert.Equal(t, c.t.UnixMilli(), entry.WrittenAt.UnixMilli())

	raw, ok, err := mem.Get(VersionsPrefix + "default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"version":"default","updated_at":`+
		strconv.FormatInt(c.t.UnixMilli(), 10)+`,"models":["latest","1.2.0","1.1.0"]}`, raw)
}

func TestFreshnessWindow(t *testing.T) {
	s, _, c := newTestStore(time.Hour)
	require.NoError(t, s.Write("default", []string{"1.0.0"}))

	c.t = c.t.Add(time.Hour)
	assert.True(t, s.IsFresh("default"), "exactly at the TTL is still fresh")

	c.t = c.t.Add(time.Millisecond)
	assert.False(t, s.IsFresh("default"))

	_, ok := s.Read("default")
	assert.True(t, ok, "stale entries stay readable")
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s, _, c := newTestStore(0)
	require.NoError(t, s.Write("2026.2.6", []string{"openai/gpt-4o"}))

	c.t = c.t.Add(365 * 24 * time.Hour)
	assert.True(t, s.IsFresh("2026.2.6"))
}

func TestEmptyWriteDeletes(t *testing.T) {
	s, mem, _ := newTestStore(time.Hour)
	require.NoError(t, s.Write("default", []string{"1.0.0"}))
	require.NoError(t, s.Write("default", nil))

	_, ok, err := mem.Get(VersionsPrefix + "default")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.IsFresh("default"))
}

func TestScopeMismatchIgnored(t *testing.T) {
	s, mem, _ := newTestStore(time.Hour)
	require.NoError(t, mem.Put(VersionsPrefix+"2026.2.6", `{"version":"2026.1.30","updated_at":1,"models":["1.0.0"]}`))

	_, ok := s.Read("2026.2.6")
	assert.False(t, ok)
}

func TestCorruptEntryIgnored(t *testing.T) {
	s, mem, _ := newTestStore(time.Hour)
	require.NoError(t, mem.Put(VersionsPrefix+"default", `not json`))

	_, ok := s.Read("default")
	assert.False(t, ok)
}

func TestScopesAreIndependent(t *testing.T) {
	s, _, _ := newTestStore(time.Hour)
	require.NoError(t, s.Write("a", []string{"1.0.0"}))
	require.NoError(t, s.Write("b", []string{"2.0.0"}))
	require.NoError(t, s.Delete("a"))

	_, ok := s.Read("a")
	assert.False(t, ok)
	entry, ok := s.Read("b")
	require.True(t, ok)
	assert.Equal(t, []string{"2.0.0"}, entry.Tokens)
}
