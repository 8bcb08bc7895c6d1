package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/macrograph/internal/cli"
	"github.com/aretw0/macrograph/internal/validator"
	"github.com/aretw0/macrograph/pkg/schema"
	"github.com/spf13/cobra"
)

var macrosCmd = &cobra.Command{
	Use:   "macros",
	Short: "Manage the macro catalog",
}

var macrosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored macro names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		names, err := app.Engine.Store().List(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var macrosGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a stored macro document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		macro, err := app.Engine.Store().Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, err := schema.NewMacroDocument(macro)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

var macrosPutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Validate a macro document and save it to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		force, _ := cmd.Flags().GetBool("force")

		macro, err := cli.ReadMacroFile(args[0])
		if err != nil {
			return err
		}
		if name != "" {
			macro.Name = name
		}

		report := validator.ValidateGraph(macro.Graph)
		for _, issue := range report.Warnings() {
			fmt.Fprintln(os.Stderr, issue.String())
		}
		if err := report.Err(); err != nil && !force {
			return fmt.Errorf("refusing to save %s: %w", macro.Name, err)
		}
		if macro.CreatedAt.IsZero() {
			macro.CreatedAt = time.Now().UTC()
		}

		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.Store().Save(cmd.Context(), macro); err != nil {
			return err
		}
		cli.PrintSystemMessage("Saved macro '%s'.", macro.Name)
		return nil
	},
}

var macrosDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a macro from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Engine.Store().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSystemMessage("Deleted macro '%s'.", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(macrosCmd)
	macrosCmd.AddCommand(macrosListCmd, macrosGetCmd, macrosPutCmd, macrosDeleteCmd)

	macrosPutCmd.Flags().String("name", "", "Store under this name instead of the document name")
	macrosPutCmd.Flags().Bool("force", false, "Save even when the linter reports errors")
}
