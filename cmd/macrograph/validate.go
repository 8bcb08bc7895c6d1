package main

import (
	"fmt"

	"github.com/aretw0/macrograph/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <macro|file>",
	Short: "Check a macro graph for consistency",
	Long: `Lints a macro graph: unknown kinds, bad socket bindings, flow and data cycles,
missing Start nodes and unreachable actions. Files are checked against the JSON Schema first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		macro, err := resolveMacro(cmd.Context(), app, args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		report := validator.ValidateGraph(macro.Graph)
		for _, issue := range report.Issues {
			fmt.Println(issue.String())
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if strict && len(report.Warnings()) > 0 {
			return fmt.Errorf("validation failed: %d warnings in strict mode", len(report.Warnings()))
		}
		fmt.Printf("Macro %s is valid! ✅\n", macro.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}
