package channels

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	telegramToken = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)
	numericID     = regexp.MustCompile(`^\d+$`)
)

// Fields is the raw form input for one platform. For Feishu, Token holds the
// App ID and Owner holds the App Secret.
type Fields struct {
	Token      string
	Owner      string
	GuildID    string
	ChannelID  string
	UserOpenID string
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f Fields) Trimmed() Fields {
	return Fields{
		Token:      strings.TrimSpace(f.Token),
		Owner:      strings.TrimSpace(f.Owner),
		GuildID:    strings.TrimSpace(f.GuildID),
		ChannelID:  strings.TrimSpace(f.ChannelID),
		UserOpenID: strings.TrimSpace(f.UserOpenID),
	}
}

// ValidationError names the first field that failed and the message to show.
type ValidationError struct {
	Platform Platform
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Platform, e.Field, e.Message)
}

// Validate checks f for p and reports the first problem. Fields are trimmed
// before checking.
func Validate(p Platform, f Fields) error {
	f = f.Trimmed()
	invalid := func(field, msg string) error {
		return &ValidationError{Platform: p, Field: field, Message: msg}
	}

	switch p {
	case Telegram:
		if !telegramToken.MatchString(f.Token) {
			return invalid("token", "Please enter a valid bot token")
		}
		if !numericID.MatchString(f.Owner) {
			return invalid("owner", "Please enter a valid owner ID")
		}
	case Discord:
		if f.Token == "" {
			return invalid("token", "Please enter your token")
		}
		if f.GuildID == "" && f.ChannelID == "" {
			return nil
		}
		if !numericID.MatchString(f.GuildID) {
			return invalid("guild", "Please enter a valid guild ID")
		}
		if !numericID.MatchString(f.ChannelID) {
			return invalid("channel", "Please enter a valid channel ID")
		}
	case Feishu:
		if f.Token == "" {
			return invalid("token", "Please enter your App ID")
		}
		if f.Owner == "" {
			return invalid("owner", "Please enter a valid App Secret")
		}
	default:
		return invalid("platform", fmt.Sprintf("Unsupported platform: %s", p))
	}
	return nil
}
