package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"botdrop/internal/channels"
	"botdrop/internal/credentials"
)

var (
	channelFields channels.Fields
	decodeApply   bool
)

func newChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Write chat platform settings into the OpenClaw configuration",
	}

	set := &cobra.Command{
		Use:   "set <telegram|discord|feishu>",
		Short: "Validate and write one platform's channel settings",
		Args:  cobra.ExactArgs(1),
		RunE:  runChannelsSet,
	}
	set.Flags().StringVar(&channelFields.Token, "token", "", "Bot token (Feishu: App ID)")
	set.Flags().StringVar(&channelFields.Owner, "owner", "", "Owner user id (Feishu: App Secret)")
	set.Flags().StringVar(&channelFields.GuildID, "guild", "", "Discord guild (server) id")
	set.Flags().StringVar(&channelFields.ChannelID, "channel", "", "Discord channel id")
	set.Flags().StringVar(&channelFields.UserOpenID, "user-open-id", "", "Feishu user open id to allow")

	show := &cobra.Command{
		Use:   "show <telegram|discord|feishu>",
		Short: "Show what is already configured for a platform",
		Args:  cobra.ExactArgs(1),
		RunE:  runChannelsShow,
	}

	decode := &cobra.Command{
		Use:   "decode <setup-code>",
		Short: "Decode a BOTDROP setup code",
		Args:  cobra.ExactArgs(1),
		RunE:  runChannelsDecode,
	}
	decode.Flags().BoolVar(&decodeApply, "apply", false, "Write the decoded settings to the OpenClaw configuration")

	cmd.AddCommand(set, show, decode)
	return cmd
}

func runChannelsSet(cmd *cobra.Command, args []string) error {
	platform, err := channels.ParsePlatform(args[0])
	if err != nil {
		return err
	}
	return submitChannel(cmd, platform, channelFields)
}

func submitChannel(cmd *cobra.Command, platform channels.Platform, fields channels.Fields) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.synthesizer().Submit(platform, fields); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, map[string]string{
			"platform": platform.String(),
			"path":     env.paths.OpenClawConfig,
			"status":   "written",
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s channel written to %s\n", channels.MetaFor(platform).Title, env.paths.OpenClawConfig)
	return nil
}

type channelView struct {
	Platform    string `json:"platform"`
	Configured  bool   `json:"configured"`
	Token       string `json:"token,omitempty"`
	Owner       string `json:"owner,omitempty"`
	GuildID     string `json:"guild_id,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	UserOpenID  string `json:"user_open_id,omitempty"`
	SetupURL    string `json:"setup_url"`
	Instruction string `json:"help"`
}

func runChannelsShow(cmd *cobra.Command, args []string) error {
	platform, err := channels.ParsePlatform(args[0])
	if err != nil {
		return err
	}

	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	existing := env.synthesizer().Preload(platform)
	meta := channels.MetaFor(platform)
	view := channelView{
		Platform:    platform.String(),
		Configured:  existing.HasExisting,
		Token:       maskIfSet(existing.Token),
		Owner:       existing.Owner,
		GuildID:     existing.GuildID,
		ChannelID:   existing.ChannelID,
		UserOpenID:  existing.FeishuUserID,
		SetupURL:    meta.SetupURL,
		Instruction: meta.HelpText,
	}
	if platform == channels.Feishu {
		// Owner carries the app secret.
		view.Owner = maskIfSet(existing.Owner)
	}

	if outputJSON {
		return printJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	if !view.Configured {
		fmt.Fprintf(out, "%s is not configured.\n%s\n%s\n", meta.Title, meta.HelpText, meta.SetupURL)
		return nil
	}
	fmt.Fprintf(out, "%s: %s\n", meta.TokenLabel, view.Token)
	if view.Owner != "" {
		fmt.Fprintf(out, "%s: %s\n", meta.OwnerLabel, view.Owner)
	}
	if view.GuildID != "" {
		fmt.Fprintf(out, "Guild ID: %s\nChannel ID: %s\n", view.GuildID, view.ChannelID)
	}
	if view.UserOpenID != "" {
		fmt.Fprintf(out, "User Open ID: %s\n", view.UserOpenID)
	}
	return nil
}

func runChannelsDecode(cmd *cobra.Command, args []string) error {
	code, err := channels.DecodeSetupCode(args[0])
	if err != nil {
		return err
	}

	if decodeApply {
		return submitChannel(cmd, code.Platform, code.Fields())
	}

	if outputJSON {
		return printJSON(cmd, map[string]any{
			"version":    code.Version,
			"platform":   code.Platform.String(),
			"bot_token":  credentials.Mask(code.BotToken),
			"owner_id":   code.OwnerID,
			"created_at": code.CreatedAt,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "platform: %s\nbot token: %s\nowner id: %s\n",
		code.Platform, credentials.Mask(code.BotToken), code.OwnerID)
	return nil
}

func maskIfSet(secret string) string {
	if secret == "" {
		return ""
	}
	return credentials.Mask(secret)
}
