package main

import (
	"fmt"

	"github.com/aretw0/macrograph/internal/cli"
	"github.com/aretw0/macrograph/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <macro|file>",
	Short: "Export the macro graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of a macro: flow edges as solid arrows,
data edges as dotted arrows. With --run the macro is executed first and the
executed nodes are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFirst, _ := cmd.Flags().GetBool("run")
		argsJSON, _ := cmd.Flags().GetString("args")

		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		macro, err := resolveMacro(ctx, app, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if runFirst {
			input, err := cli.ParseArgs(argsJSON)
			if err != nil {
				return err
			}
			res, runErr := app.Engine.RunGraph(ctx, macro.Graph, input)
			overlay = &graph.GraphOverlay{FailedNode: -1}
			if res != nil {
				overlay.ExecutedNodes = res.Executed
				if runErr != nil {
					overlay.FailedNode = res.LastNode()
				}
			}
		}

		fmt.Print(graph.GenerateMermaid(macro.Graph, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().Bool("run", false, "Run the macro and highlight executed nodes")
	graphCmd.Flags().StringP("args", "a", "", "Macro arguments as a JSON object (with --run)")
}
