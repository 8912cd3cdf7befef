package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"botdrop/internal/credentials"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage recently used provider API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "remember <provider> <key>",
		Short: "Put a key at the front of the provider's recent list",
		Args:  cobra.ExactArgs(2),
		RunE:  runKeysRemember,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list <provider>",
		Short: "List a provider's recent keys, most recent first (masked)",
		Args:  cobra.ExactArgs(1),
		RunE:  runKeysList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "forget <provider> <key>",
		Short: "Remove a key from the provider's recent list",
		Args:  cobra.ExactArgs(2),
		RunE:  runKeysForget,
	})
	return cmd
}

func runKeysRemember(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.credentials().Remember(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "remembered %s for %s\n", credentials.Mask(args[1]), args[0])
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	keys, err := env.credentials().List(args[0])
	if err != nil {
		return err
	}
	masked := make([]string, 0, len(keys))
	for _, k := range keys {
		masked = append(masked, credentials.Mask(k))
	}

	if outputJSON {
		return printJSON(cmd, map[string]any{"provider": args[0], "keys": masked})
	}
	for i, k := range masked {
		fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", i+1, k)
	}
	return nil
}

func runKeysForget(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	return env.credentials().Forget(args[0], args[1])
}
