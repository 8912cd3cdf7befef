// Package credentials remembers recently used API keys per model provider.
package credentials

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"botdrop/internal/kv"
	"botdrop/internal/versioncache"
)

const (
	keyPrefix       = "recent_keys_by_provider_"
	legacyKeyPrefix = "recent_keys_by_model_"

	// MaxPerProvider caps how many keys are kept for one provider.
	MaxPerProvider = 8
)

// Cache stores keys most-recent-first under one kv entry per provider.
type Cache struct {
	store kv.Store
	log   zerolog.Logger

	mu sync.Mutex
}

// New returns a cache backed by store.
func New(store kv.Store, log zerolog.Logger) *Cache {
	return &Cache{store: store, log: log}
}

func providerKey(provider string) string {
	return keyPrefix + versioncache.ScopeKey(provider)
}

func legacyPrefix(provider string) string {
	return legacyKeyPrefix + versioncache.ScopeKey(provider) + "_"
}

// Remember moves credential to the front of provider's list, adding it when
// new and dropping the oldest entries past MaxPerProvider.
func (c *Cache) Remember(provider, credential string) error {
	credential = strings.TrimSpace(credential)
	if strings.TrimSpace(provider) == "" || credential == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.load(provider)
	if err != nil {
		return err
	}
	keys = slices.DeleteFunc(keys, func(k string) bool { return k == credential })
	keys = append([]string{credential}, keys...)
	return c.save(provider, capList(keys))
}

// List returns provider's keys, most recent first. Entries written by the
// older per-model scheme are merged in once and then removed.
func (c *Cache) List(provider string) ([]string, error) {
	if strings.TrimSpace(provider) == "" {
		return []string{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(provider)
}

// Forget removes one key from provider's list.
func (c *Cache) Forget(provider, credential string) error {
	credential = strings.TrimSpace(credential)
	if strings.TrimSpace(provider) == "" || credential == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.load(provider)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(keys), func(k string) bool { return k == credential })
	if len(kept) == len(keys) {
		return nil
	}
	return c.save(provider, kept)
}

// load reads the provider list, migrating legacy entries when present.
func (c *Cache) load(provider string) ([]string, error) {
	key := providerKey(provider)
	raw, found, err := c.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("read recent keys: %w", err)
	}

	var keys []string
	if found {
		keys = appendUnique(keys, decodeList(raw, c.log)...)
	}

	legacyKeys, err := c.store.Keys(legacyPrefix(provider))
	if err != nil {
		return nil, fmt.Errorf("list legacy keys: %w", err)
	}
	for _, lk := range legacyKeys {
		lraw, ok, err := c.store.Get(lk)
		if err != nil || !ok {
			continue
		}
		keys = appendUnique(keys, decodeList(lraw, c.log)...)
	}
	keys = capList(keys)

	if len(legacyKeys) > 0 {
		if err := c.save(provider, keys); err != nil {
			return nil, err
		}
		for _, lk := range legacyKeys {
			if err := c.store.Delete(lk); err != nil {
				return nil, fmt.Errorf("remove legacy keys: %w", err)
			}
		}
		c.log.Info().Str("provider", versioncache.ScopeKey(provider)).Int("legacy_entries", len(legacyKeys)).Msg("migrated cached api keys")
	}

	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (c *Cache) save(provider string, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode recent keys: %w", err)
	}
	if err := c.store.Put(providerKey(provider), string(data)); err != nil {
		return fmt.Errorf("write recent keys: %w", err)
	}
	return nil
}

func decodeList(raw string, log zerolog.Logger) []string {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable key list")
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || slices.Contains(dst, item) {
			continue
		}
		dst = append(dst, item)
	}
	return dst
}

func capList(keys []string) []string {
	if len(keys) > MaxPerProvider {
		return keys[:MaxPerProvider]
	}
	return keys
}

// Mask hides all but the last four characters of a key.
func Mask(credential string) string {
	if credential == "" {
		return "••••"
	}
	trimmed := strings.TrimSpace(credential)
	if utf8.RuneCountInString(trimmed) <= 8 {
		return "••••••••"
	}
	runes := []rune(trimmed)
	return "•••• •••• " + string(runes[len(runes)-4:])
}
