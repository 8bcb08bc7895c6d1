package main

import (
	"fmt"

	"github.com/aretw0/macrograph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <macro|file>",
	Short: "Render a human-readable description of a macro",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		width, _ := cmd.Flags().GetInt("width")

		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		macro, err := resolveMacro(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}

		doc := tui.DescribeMacro(macro)
		if raw {
			fmt.Print(doc)
			return nil
		}

		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(doc)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().Bool("raw", false, "Print the Markdown source instead of rendering it")
	describeCmd.Flags().Int("width", 80, "Word wrap width")
}
