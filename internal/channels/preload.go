package channels

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"botdrop/internal/document"
)

// Existing is what a previous setup left in the document for one platform.
// Empty fields were not found.
type Existing struct {
	Token        string
	Owner        string
	GuildID      string
	ChannelID    string
	FeishuUserID string
	// HasExisting is true when the stored settings are complete enough to
	// skip setup.
	HasExisting bool
}

// Fields converts e back to form input.
func (e Existing) Fields() Fields {
	return Fields{
		Token:      e.Token,
		Owner:      e.Owner,
		GuildID:    e.GuildID,
		ChannelID:  e.ChannelID,
		UserOpenID: e.FeishuUserID,
	}
}

// ExtractExisting reverses Apply as far as the document allows.
func ExtractExisting(doc document.Document, p Platform) Existing {
	cfg, ok := document.Path(doc, "channels", p.String())
	if !ok {
		return Existing{}
	}

	var e Existing
	if p == Feishu {
		if main, ok := document.Path(cfg, "accounts", "main"); ok {
			e.Token = scalarString(main["appId"])
			e.Owner = scalarString(main["appSecret"])
		}
		e.FeishuUserID = firstAllowFrom(cfg)
	} else {
		e.Token = scalarString(cfg["botToken"])
		if e.Token == "" {
			e.Token = scalarString(cfg["token"])
		}
		e.Owner = scalarString(cfg["ownerId"])
		if e.Owner == "" {
			e.Owner = firstAllowFrom(cfg)
		}
	}

	e.GuildID, e.ChannelID = firstGuildChannel(cfg)
	if p == Discord && e.GuildID == "" {
		return Existing{}
	}

	switch p {
	case Discord:
		e.HasExisting = e.Token != "" && e.GuildID != "" && e.ChannelID != ""
	case Feishu:
		e.HasExisting = e.Token != "" && e.Owner != ""
		if strings.TrimSpace(scalarString(cfg["dmPolicy"])) == "allowlist" && e.FeishuUserID == "" {
			e.HasExisting = false
		}
	default:
		e.HasExisting = e.Token != ""
	}
	return e
}

func firstAllowFrom(cfg map[string]any) string {
	switch v := cfg["allowFrom"].(type) {
	case []any:
		if len(v) > 0 {
			return scalarString(v[0])
		}
	default:
		return scalarString(v)
	}
	return ""
}

// firstGuildChannel picks the first guild, in key order, that has at least
// one channel.
func firstGuildChannel(cfg map[string]any) (string, string) {
	guilds, ok := document.Object(cfg, "guilds")
	if !ok {
		return "", ""
	}
	for _, guild := range sortedKeys(guilds) {
		if strings.TrimSpace(guild) == "" {
			continue
		}
		chans, ok := document.Path(guilds, guild, "channels")
		if !ok || len(chans) == 0 {
			continue
		}
		return strings.TrimSpace(guild), strings.TrimSpace(sortedKeys(chans)[0])
	}
	return "", ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scalarString renders ids that may have been stored as strings or numbers.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
