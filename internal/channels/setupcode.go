package channels

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const setupCodePrefix = "BOTDROP"

// ErrInvalidSetupCode is wrapped by every DecodeSetupCode failure.
var ErrInvalidSetupCode = errors.New("invalid setup code")

// SetupCode is the payload handed out by the setup bot:
// BOTDROP-<tg|dc|fs>-<base64 JSON>.
type SetupCode struct {
	Version   int
	Platform  Platform
	BotToken  string
	OwnerID   string
	CreatedAt time.Time
}

// Fields maps the code onto form input for its platform.
func (c SetupCode) Fields() Fields {
	return Fields{Token: c.BotToken, Owner: c.OwnerID}
}

type setupPayload struct {
	V         int    `json:"v"`
	Platform  string `json:"platform"`
	BotToken  any    `json:"bot_token"`
	OwnerID   any    `json:"owner_id"`
	CreatedAt int64  `json:"created_at"`
}

// DecodeSetupCode parses a setup code. When the payload omits the platform
// it is inferred from the short code.
func DecodeSetupCode(code string) (SetupCode, error) {
	parts := strings.SplitN(strings.TrimSpace(code), "-", 3)
	if len(parts) != 3 || parts[0] != setupCodePrefix {
		return SetupCode{}, fmt.Errorf("%w: expected %s-<platform>-<payload>", ErrInvalidSetupCode, setupCodePrefix)
	}

	raw, err := decodeBase64(parts[2])
	if err != nil {
		return SetupCode{}, fmt.Errorf("%w: %v", ErrInvalidSetupCode, err)
	}

	var payload setupPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return SetupCode{}, fmt.Errorf("%w: %v", ErrInvalidSetupCode, err)
	}

	platformName := payload.Platform
	if platformName == "" {
		platformName = parts[1]
	}
	platform, err := ParsePlatform(platformName)
	if err != nil {
		return SetupCode{}, fmt.Errorf("%w: %v", ErrInvalidSetupCode, err)
	}

	botToken := scalarString(payload.BotToken)
	ownerID := scalarString(payload.OwnerID)
	if payload.BotToken == nil || payload.OwnerID == nil {
		return SetupCode{}, fmt.Errorf("%w: missing bot_token or owner_id", ErrInvalidSetupCode)
	}

	sc := SetupCode{
		Version:  payload.V,
		Platform: platform,
		BotToken: botToken,
		OwnerID:  ownerID,
	}
	if payload.CreatedAt > 0 {
		sc.CreatedAt = time.Unix(payload.CreatedAt, 0).UTC()
	}
	return sc, nil
}

// decodeBase64 accepts padded or unpadded, standard or URL-safe input, with
// embedded line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		out, err := enc.DecodeString(s)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
