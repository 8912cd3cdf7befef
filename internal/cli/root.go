package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	stateDir   string
	configFile string
	outputJSON bool
	logLevel   string
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "botdrop",
		Short:         "Resolve OpenClaw versions and write chat channel configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindSettings(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&stateDir, "state-dir", "", "Directory holding botdrop.yaml, caches and logs (default ~/.botdrop)")
	flags.StringVar(&configFile, "config", "", "Path to botdrop.yaml (default <state-dir>/botdrop.yaml)")
	flags.BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	flags.StringVar(&logLevel, "log-level", "", "Override log.level from the configuration")

	cmd.AddCommand(newVersionsCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newChannelsCmd())
	cmd.AddCommand(newKeysCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// bindSettings resolves every global flag from the command line first and the
// BOTDROP_ environment second.
func bindSettings(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("BOTDROP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"state-dir", "config", "json", "log-level"} {
		if err := v.BindPFlag(name, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	stateDir = v.GetString("state-dir")
	configFile = v.GetString("config")
	outputJSON = v.GetBool("json")
	logLevel = v.GetString("log-level")
	return nil
}
