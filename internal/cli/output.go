package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"botdrop/internal/tui"
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// printAdvisory writes a degraded-result notice to stderr.
func printAdvisory(cmd *cobra.Command, advisory string) {
	if advisory == "" {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), tui.AdvisoryStyle.Render("warning: "+advisory))
}

// startStatus shows a spinner on stderr while a lookup runs. It draws nothing
// in JSON mode or when stderr is not a terminal.
func startStatus(cmd *cobra.Command, msg string) func() {
	if outputJSON {
		return func() {}
	}
	sw := tui.NewStatusWriter(cmd.ErrOrStderr(), msg)
	return sw.Stop
}
