package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"botdrop/internal/config"
	"botdrop/internal/paths"
	"botdrop/internal/tui"
)

var configForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create botdrop.yaml",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default botdrop.yaml",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for mistakes",
		Args:  cobra.NoArgs,
		RunE:  runConfigValidate,
	})
	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	sp, _, err := loadConfig()
	if err != nil {
		return err
	}
	exists, err := paths.FileExists(sp.ConfigFile)
	if err != nil {
		return err
	}
	if exists && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", sp.ConfigFile)
	}
	if err := sp.EnsureRoot(); err != nil {
		return err
	}
	if err := config.Default().Save(sp.ConfigFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", sp.ConfigFile)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd, cfg)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	sp, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	results := cfg.Validate()

	if outputJSON {
		if err := printJSON(cmd, map[string]any{"path": sp.ConfigFile, "results": results}); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if _, statErr := os.Stat(sp.ConfigFile); statErr != nil {
			fmt.Fprintf(out, "%s not found; checking defaults\n", sp.ConfigFile)
		}
		for _, r := range results {
			style := tui.AdvisoryStyle
			if r.Level == "error" {
				style = tui.ErrorStyle
			}
			fmt.Fprintf(out, "%s %s\n", style.Render(r.Level+":"), r.Message)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "configuration OK")
		}
	}

	if config.HasErrors(results) {
		return errors.New("configuration has errors")
	}
	return nil
}
