// Package versioncache persists ranked token lists (OpenClaw versions, model
// names) per scope key with a freshness window.
package versioncache

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"botdrop/internal/kv"
)

// Key prefixes used by the two caches that share this envelope.
const (
	VersionsPrefix = "openclaw_versions_"
	ModelsPrefix   = "models_by_version_"

	// DefaultTTL is how long a version list stays fresh.
	DefaultTTL = time.Hour
)

var unsafeScopeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ScopeKey canonicalizes a raw scope (usually an installed version string) so
// it can be embedded in a storage key.
func ScopeKey(raw string) string {
	key := unsafeScopeChars.ReplaceAllString(strings.TrimSpace(raw), "_")
	if key == "" {
		return "unknown"
	}
	return key
}

// Entry is one cached list.
type Entry struct {
	Scope     string
	Tokens    []string
	WrittenAt time.Time
}

// FreshAt reports whether the entry is still inside ttl at now. A ttl of zero
// or less never expires.
func (e Entry) FreshAt(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(e.WrittenAt) <= ttl
}

// envelope is the persisted form. The list lives under "models" for
// compatibility with caches written by earlier app versions.
type envelope struct {
	Version   string   `json:"version"`
	UpdatedAt int64    `json:"updated_at"`
	Models    []string `json:"models"`
}

// Store reads and writes entries through a kv.Store.
type Store struct {
	kv     kv.Store
	prefix string
	ttl    time.Duration

	// Now is the clock used for freshness checks and timestamps.
	Now func() time.Time
	Log zerolog.Logger
}

// New returns a cache writing keys "<prefix><scope>".
func New(store kv.Store, prefix string, ttl time.Duration) *Store {
	return &Store{
		kv:     store,
		prefix: prefix,
		ttl:    ttl,
		Now:    time.Now,
		Log:    zerolog.Nop(),
	}
}

// TTL returns the freshness window.
func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) key(scope string) string {
	return s.prefix + ScopeKey(scope)
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Read returns the stored entry regardless of age. Missing, undecodable,
// empty or mismatched-scope entries all report false.
func (s *Store) Read(scope string) (Entry, bool) {
	scopeKey := ScopeKey(scope)
	raw, ok, err := s.kv.Get(s.prefix + scopeKey)
	if err != nil {
		s.Log.Warn().Err(err).Str("scope", scopeKey).Msg("read cache entry")
		return Entry{}, false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return Entry{}, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.Log.Warn().Err(err).Str("scope", scopeKey).Msg("decode cache entry")
		return Entry{}, false
	}
	if env.Version != scopeKey || len(env.Models) == 0 {
		return Entry{}, false
	}

	return Entry{
		Scope:     scopeKey,
		Tokens:    env.Models,
		WrittenAt: time.UnixMilli(env.UpdatedAt),
	}, true
}

// ReadFresh returns the entry only when it is inside the TTL.
func (s *Store) ReadFresh(scope string) (Entry, bool) {
	entry, ok := s.Read(scope)
	if !ok || !entry.FreshAt(s.now(), s.ttl) {
		return Entry{}, false
	}
	return entry, true
}

// IsFresh reports whether a non-empty entry exists inside the TTL.
func (s *Store) IsFresh(scope string) bool {
	_, ok := s.ReadFresh(scope)
	return ok
}

// Write stores tokens for scope stamped with the current time. An empty list
// deletes the entry instead.
func (s *Store) Write(scope string, tokens []string) error {
	if len(tokens) == 0 {
		return s.Delete(scope)
	}

	scopeKey := ScopeKey(scope)
	data, err := json.Marshal(envelope{
		Version:   scopeKey,
		UpdatedAt: s.now().UnixMilli(),
		Models:    tokens,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.kv.Put(s.prefix+scopeKey, string(data)); err != nil {
		return fmt.Errorf("write cache entry %s: %w", scopeKey, err)
	}
	s.Log.Debug().Str("scope", scopeKey).Int("count", len(tokens)).Msg("cache entry written")
	return nil
}

// Delete drops the entry for scope.
func (s *Store) Delete(scope string) error {
	if err := s.kv.Delete(s.key(scope)); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}
