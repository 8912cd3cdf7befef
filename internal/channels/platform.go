// Package channels validates chat-platform credentials and merges them into
// the agent configuration document.
package channels

import (
	"fmt"
	"strings"
)

// Platform identifies a supported chat platform.
type Platform string

const (
	Telegram Platform = "telegram"
	Discord  Platform = "discord"
	Feishu   Platform = "feishu"
)

// Platforms lists every supported platform in display order.
func Platforms() []Platform {
	return []Platform{Telegram, Discord, Feishu}
}

// ParsePlatform accepts a platform name or its setup-code short form (tg,
// dc, fs), case-insensitively.
func ParsePlatform(raw string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "telegram", "tg":
		return Telegram, nil
	case "discord", "dc":
		return Discord, nil
	case "feishu", "fs", "lark":
		return Feishu, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", raw)
	}
}

// ShortCode is the two-letter form used inside setup codes.
func (p Platform) ShortCode() string {
	switch p {
	case Telegram:
		return "tg"
	case Discord:
		return "dc"
	case Feishu:
		return "fs"
	default:
		return ""
	}
}

func (p Platform) String() string { return string(p) }
