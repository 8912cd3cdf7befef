package channels

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"botdrop/internal/document"
)

// DocumentStore is the persistence the synthesizer needs.
type DocumentStore interface {
	Read() (document.Document, error)
	Write(document.Document) error
}

// ConfigWriteError wraps a failure to read, merge or persist the document.
// Nothing is written when it is returned.
type ConfigWriteError struct {
	Platform Platform
	Op       string
	Err      error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("%s %s channel config: %v", e.Op, e.Platform, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }

// Synthesizer merges one platform's settings into the configuration
// document. Calls on one Synthesizer are serialized.
type Synthesizer struct {
	store DocumentStore
	log   zerolog.Logger

	mu sync.Mutex
}

// NewSynthesizer returns a synthesizer writing through store.
func NewSynthesizer(store DocumentStore, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{store: store, log: log}
}

// WriteChannel validates, merges and persists, reporting only success.
func (s *Synthesizer) WriteChannel(p Platform, f Fields) bool {
	if err := s.Submit(p, f); err != nil {
		s.log.Warn().Str("platform", p.String()).Err(err).Msg("channel config not written")
		return false
	}
	return true
}

// Submit validates f, then replaces channels.<p> and plugins.entries.<p> in
// the document and writes it back. Every other key is preserved. It returns
// a *ValidationError or a *ConfigWriteError.
func (s *Synthesizer) Submit(p Platform, f Fields) error {
	f = f.Trimmed()
	if err := Validate(p, f); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Read()
	if err != nil {
		return &ConfigWriteError{Platform: p, Op: "read", Err: err}
	}
	if err := Apply(doc, p, f); err != nil {
		return &ConfigWriteError{Platform: p, Op: "merge", Err: err}
	}
	if err := s.store.Write(doc); err != nil {
		return &ConfigWriteError{Platform: p, Op: "write", Err: err}
	}

	s.log.Info().Str("platform", p.String()).Msg("channel config written")
	return nil
}

// Preload reads the document and extracts what is already configured for p.
// Any failure yields an empty Existing.
func (s *Synthesizer) Preload(p Platform) Existing {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Read()
	if err != nil {
		s.log.Warn().Str("platform", p.String()).Err(err).Msg("preload channel config")
		return Existing{}
	}
	return ExtractExisting(doc, p)
}

var errNotObject = errors.New("not an object")

// Apply merges f for p into doc in place. f must already be valid.
func Apply(doc document.Document, p Platform, f Fields) error {
	if doc == nil {
		return errors.New("nil document")
	}
	subtree, err := channelSubtree(p, f.Trimmed())
	if err != nil {
		return err
	}

	channels, err := childObject(doc, "channels")
	if err != nil {
		return err
	}
	plugins, err := childObject(doc, "plugins")
	if err != nil {
		return err
	}
	entries, err := childObject(plugins, "entries")
	if err != nil {
		return fmt.Errorf("plugins.%w", err)
	}

	channels[p.String()] = subtree
	entries[p.String()] = map[string]any{"enabled": true}
	return nil
}

func channelSubtree(p Platform, f Fields) (map[string]any, error) {
	switch p {
	case Telegram:
		return map[string]any{
			"enabled":     true,
			"botToken":    f.Token,
			"dmPolicy":    "allowlist",
			"groupPolicy": "allowlist",
			"streamMode":  "partial",
			"allowFrom":   []any{f.Owner},
		}, nil
	case Discord:
		discord := map[string]any{
			"enabled":     true,
			"token":       f.Token,
			"groupPolicy": "allowlist",
		}
		if f.GuildID != "" && f.ChannelID != "" {
			discord["guilds"] = map[string]any{
				f.GuildID: map[string]any{
					"channels": map[string]any{
						f.ChannelID: map[string]any{
							"allow":          true,
							"requireMention": false,
							"autoThread":     false,
						},
					},
				},
			}
		}
		return discord, nil
	case Feishu:
		feishu := map[string]any{
			"enabled":  true,
			"dmPolicy": "pairing",
			"accounts": map[string]any{
				"main": map[string]any{
					"appId":     f.Token,
					"appSecret": f.Owner,
				},
			},
		}
		if f.UserOpenID != "" {
			feishu["dmPolicy"] = "allowlist"
			feishu["allowFrom"] = []any{f.UserOpenID}
		}
		return feishu, nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", p)
	}
}

// childObject returns parent[key], creating it when absent. A present value
// that is not an object is an error rather than being overwritten.
func childObject(parent map[string]any, key string) (map[string]any, error) {
	v, present := parent[key]
	if !present || v == nil {
		return document.EnsureObject(parent, key), nil
	}
	obj, ok := document.Object(parent, key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, errNotObject)
	}
	return obj, nil
}
