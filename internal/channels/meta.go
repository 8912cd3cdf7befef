package channels

// Meta carries the labels and links shown when asking for a platform's
// credentials.
type Meta struct {
	Platform   Platform `json:"platform"`
	Title      string   `json:"title"`
	SetupURL   string   `json:"setup_url"`
	TokenLabel string   `json:"token_label"`
	TokenHint  string   `json:"token_hint"`
	OwnerLabel string   `json:"owner_label"`
	OwnerHint  string   `json:"owner_hint"`
	HelpText   string   `json:"help_text"`
	ShowOwner  bool     `json:"show_owner"`
	ShowGuild  bool     `json:"show_guild"`
	ShowOpenID bool     `json:"show_open_id"`
}

// MetaFor returns the form metadata for p. Unknown platforms get Telegram's.
func MetaFor(p Platform) Meta {
	switch p {
	case Discord:
		return Meta{
			Platform:   Discord,
			Title:      "Discord",
			SetupURL:   "https://discord.com/developers/applications",
			TokenLabel: "Bot Token",
			TokenHint:  "bot-token",
			OwnerLabel: "Owner ID",
			OwnerHint:  "optional",
			HelpText: "Create a bot in Discord Developer Portal, get the Bot Token, " +
				"then add the bot to your Guild(Server) and Channel.",
			ShowGuild: true,
		}
	case Feishu:
		return Meta{
			Platform:   Feishu,
			Title:      "Feishu",
			SetupURL:   "https://open.feishu.cn",
			TokenLabel: "App ID",
			TokenHint:  "app-id",
			OwnerLabel: "App Secret",
			OwnerHint:  "app-secret",
			HelpText: "Create a Feishu app and bot, then fill in App ID and App Secret. " +
				"See https://docs.openclaw.ai/channels/feishu for details.",
			ShowOwner:  true,
			ShowOpenID: true,
		}
	default:
		return Meta{
			Platform:   Telegram,
			Title:      "Telegram",
			SetupURL:   "https://t.me/BotDropSetupBot",
			TokenLabel: "Bot Token (from @BotFather)",
			TokenHint:  "123456789:ABCdefGHI...",
			OwnerLabel: "Your User ID (from @BotDropSetupBot)",
			OwnerHint:  "123456789",
			HelpText:   "Open the setup bot to create your Telegram bot and get your User ID.",
			ShowOwner:  true,
		}
	}
}
