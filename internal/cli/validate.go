package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timelinec/internal/appconfig"
	"timelinec/internal/paths"
	"timelinec/internal/reportstyle"
	"timelinec/internal/script"
)

func newValidateCmd() *cobra.Command {
	var scriptFlag string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a Script document without compiling it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, scriptFlag)
		},
	}
	cmd.Flags().StringVar(&scriptFlag, "script", "", "Path to the Script JSON document (defaults to project config)")
	return cmd
}

func runValidate(cmd *cobra.Command, scriptFlag string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := appconfig.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	pp = paths.ApplyConfig(pp, cfg)
	if scriptFlag != "" {
		pp.ScriptFile = scriptFlag
	}

	var s script.Script
	if err := readJSON(pp.ScriptFile, &s); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	results := s.Validate()

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	writeValidateTable(cmd, results)
	if script.HasErrors(results) {
		return fmt.Errorf("script is invalid: %d finding(s)", len(results))
	}
	return nil
}

func writeValidateTable(cmd *cobra.Command, results []script.ValidationResult) {
	if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", reportstyle.LevelStyle("ok").Render("script is valid"))
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tMESSAGE")
	for _, r := range results {
		level := reportstyle.LevelStyle(r.Level).Render(r.Level)
		fmt.Fprintf(w, "%s\t%s\n", level, r.Message)
	}
	w.Flush()
}
