package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/invitations/internal/harness"
	"github.com/roach88/invitations/internal/registry"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Components []string `json:"components,omitempty"`
	Scenarios  int      `json:"scenarios"`
	Errors     []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var scenarios string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration, component registry and scenarios",
		Long: `Check the configuration (file and INVITATIONS_* environment), the CUE
component registry it names and, with --scenarios, every scenario file,
without opening the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, scenarios, cmd)
		},
	}

	cmd.Flags().StringVar(&scenarios, "scenarios", "", "directory of scenario files to validate")

	return cmd
}

func runValidate(opts *RootOptions, scenariosDir string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	result := ValidationResult{Valid: true}
	addError := func(msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		addError(err.Error())
	} else if cfg.ComponentsFile != "" {
		out.VerboseLog("Loading components from %s", cfg.ComponentsFile)
		reg, err := registry.LoadFile(cfg.ComponentsFile)
		if err != nil {
			addError(err.Error())
		} else {
			result.Components = reg.WithInvitationCallback()
		}
	}

	if scenariosDir != "" {
		files, err := findScenarioFiles(scenariosDir, "")
		if err != nil {
			addError(err.Error())
		}
		for _, f := range files {
			if _, err := harness.LoadScenario(f); err != nil {
				addError(fmt.Sprintf("%s: %v", f, err))
				continue
			}
			result.Scenarios++
		}
	}

	if !result.Valid {
		if opts.Format == "json" {
			if err := out.encode(CLIResponse{Status: "error", Data: result}); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out.Writer, "✗ Validation failed")
			for _, e := range result.Errors {
				fmt.Fprintf(out.Writer, "  %s\n", e)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	fmt.Fprintf(out.Writer, "✓ Configuration valid (%d scenario(s) checked)\n", result.Scenarios)
	return nil
}
