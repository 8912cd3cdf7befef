package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"botdrop/internal/resolver"
	"botdrop/internal/tui"
	"botdrop/internal/version"
)

var (
	versionsRefresh bool
	versionsScope   string
)

func newVersionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List and select installable OpenClaw versions",
	}

	cmd.AddCommand(newVersionsListCmd())
	cmd.AddCommand(newVersionsLatestCmd())
	cmd.AddCommand(newVersionsPickCmd())
	cmd.AddCommand(newVersionsInstallCmd())
	return cmd
}

func newVersionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the ranked version list, newest first",
		Args:  cobra.NoArgs,
		RunE:  runVersionsList,
	}
	cmd.Flags().BoolVar(&versionsRefresh, "refresh", false, "Ignore a fresh cache entry and query the registry")
	cmd.Flags().StringVar(&versionsScope, "scope", resolver.DefaultScope, "Cache scope for the version list")
	return cmd
}

func newVersionsLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the registry's latest version",
		Args:  cobra.NoArgs,
		RunE:  runVersionsLatest,
	}
}

func newVersionsPickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a version interactively and print its install command",
		Args:  cobra.NoArgs,
		RunE:  runVersionsPick,
	}
	cmd.Flags().BoolVar(&versionsRefresh, "refresh", false, "Ignore a fresh cache entry and query the registry")
	cmd.Flags().StringVar(&versionsScope, "scope", resolver.DefaultScope, "Cache scope for the version list")
	return cmd
}

func newVersionsInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install-cmd <version>",
		Short: "Print the shell command that installs a version",
		Args:  cobra.ExactArgs(1),
		RunE:  runVersionsInstall,
	}
}

type versionRow struct {
	Version   string `json:"version"`
	Installed bool   `json:"installed,omitempty"`
}

type versionsReport struct {
	Versions  []versionRow `json:"versions"`
	Installed string       `json:"installed,omitempty"`
	Source    string       `json:"source"`
	Advisory  string       `json:"advisory,omitempty"`
}

func resolveVersions(ctx context.Context, env *environment, force bool) (resolver.Result, string) {
	installed := env.installedVersion(ctx)
	res := env.versionResolver().Resolve(ctx, resolver.Request{
		ScopeKey:       versionsScope,
		CurrentVersion: installed,
		ForceRefresh:   force,
	})
	if current, ok := version.Normalize(installed); ok {
		installed = current
		res.Versions = version.WithInstalled(res.Versions, installed)
	}
	return res, installed
}

func runVersionsList(cmd *cobra.Command, _ []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	stop := startStatus(cmd, "Fetching OpenClaw versions")
	res, installed := resolveVersions(commandContext(cmd), env, versionsRefresh)
	stop()

	report := versionsReport{
		Installed: installed,
		Source:    string(res.Source),
		Advisory:  res.Advisory,
	}
	for _, v := range res.Versions {
		report.Versions = append(report.Versions, versionRow{Version: v, Installed: v == installed})
	}

	if outputJSON {
		return printJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	for _, row := range report.Versions {
		if row.Installed {
			fmt.Fprintf(out, "%s  %s\n", row.Version, tui.NoteStyle.Render("← installed"))
			continue
		}
		fmt.Fprintln(out, row.Version)
	}
	printAdvisory(cmd, res.Advisory)
	return nil
}

func runVersionsLatest(cmd *cobra.Command, _ []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	stop := startStatus(cmd, "Asking the registry for the latest version")
	latest, err := env.versionResolver().Latest(commandContext(cmd))
	stop()
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, map[string]string{"latest": latest})
	}
	fmt.Fprintln(cmd.OutOrStdout(), latest)
	return nil
}

func runVersionsPick(cmd *cobra.Command, _ []string) error {
	if tui.DetectMode(cmd.ErrOrStderr(), false, outputJSON) != tui.ModeTUI {
		return errors.New("versions pick needs an interactive terminal; use versions list")
	}

	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := commandContext(cmd)
	picker := tui.NewPicker(ctx, "OpenClaw version", func(ctx context.Context, force bool) tui.Page {
		res, installed := resolveVersions(ctx, env, force || versionsRefresh)
		page := tui.Page{Advisory: res.Advisory, Source: string(res.Source)}
		for _, v := range res.Versions {
			item := tui.Item{Value: v}
			if v == installed {
				item.Note = "installed"
			}
			page.Items = append(page.Items, item)
		}
		return page
	})

	chosen, ok, err := tui.RunPicker(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), picker)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no version selected")
	}
	return printInstallCommand(cmd, env, chosen)
}

func runVersionsInstall(cmd *cobra.Command, args []string) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	return printInstallCommand(cmd, env, args[0])
}

func printInstallCommand(cmd *cobra.Command, env *environment, raw string) error {
	normalizer := version.Normalizer{ToolPrefix: env.cfg.OpenClaw.Package + "@"}
	spec, ok := normalizer.InstallSpec(raw)
	if !ok {
		return fmt.Errorf("%q is not a version", raw)
	}
	command := env.commands().Install(spec)
	if outputJSON {
		return printJSON(cmd, map[string]string{"spec": spec, "command": command})
	}
	fmt.Fprintln(cmd.OutOrStdout(), command)
	return nil
}
