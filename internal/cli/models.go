package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"botdrop/internal/models"
)

var (
	modelsRefresh  bool
	modelsProvider string
	modelsFilter   string
	modelsVersion  string
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models the installed OpenClaw knows about",
	}
	cmd.PersistentFlags().BoolVar(&modelsRefresh, "refresh", false, "Ignore cached lists and ask openclaw again")
	cmd.PersistentFlags().StringVar(&modelsVersion, "openclaw-version", "", "Agent version whose model list to use (default: installed)")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print models, newest names first",
		Args:  cobra.NoArgs,
		RunE:  runModelsList,
	}
	list.Flags().StringVar(&modelsProvider, "provider", "", "Only show models from this provider")
	list.Flags().StringVar(&modelsFilter, "filter", "", "Case-insensitive substring filter")

	providers := &cobra.Command{
		Use:   "providers",
		Short: "Print the providers present in the model list",
		Args:  cobra.NoArgs,
		RunE:  runModelsProviders,
	}

	cmd.AddCommand(list, providers)
	return cmd
}

func resolveModels(cmd *cobra.Command) (models.Result, error) {
	env, err := openEnvironment(cmd)
	if err != nil {
		return models.Result{}, err
	}
	defer env.Close()

	ctx := commandContext(cmd)
	openclawVersion := modelsVersion
	if openclawVersion == "" {
		openclawVersion = env.installedVersion(ctx)
	}

	r, err := env.modelResolver()
	if err != nil {
		return models.Result{}, err
	}
	stop := startStatus(cmd, "Loading models")
	defer stop()
	return r.Resolve(ctx, openclawVersion, modelsRefresh)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	res, err := resolveModels(cmd)
	if err != nil {
		return err
	}

	selected := res.Models
	if modelsProvider != "" {
		selected = models.ForProvider(selected, modelsProvider)
	}
	selected = models.Filter(selected, modelsFilter)

	if outputJSON {
		return printJSON(cmd, struct {
			Models   []string `json:"models"`
			Source   string   `json:"source"`
			Scope    string   `json:"scope"`
			Advisory string   `json:"advisory,omitempty"`
		}{models.Names(selected), string(res.Source), res.Scope, res.Advisory})
	}

	for _, name := range models.Names(selected) {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	printAdvisory(cmd, res.Advisory)
	return nil
}

func runModelsProviders(cmd *cobra.Command, _ []string) error {
	res, err := resolveModels(cmd)
	if err != nil {
		return err
	}
	providers := models.Providers(res.Models)

	if outputJSON {
		return printJSON(cmd, map[string]any{"providers": providers, "source": string(res.Source)})
	}
	for _, p := range providers {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	printAdvisory(cmd, res.Advisory)
	return nil
}
