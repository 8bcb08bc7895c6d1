package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/macrograph"
	"github.com/aretw0/macrograph/internal/cli"
	"github.com/aretw0/macrograph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <macro|file>",
	Short: "Run a macro against the scene",
	Long: `Runs a catalog macro, or a macro or graph document read from a file,
against an in-memory scene and prints the host calls it made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		argsJSON, _ := cmd.Flags().GetString("args")
		jsonMode, _ := cmd.Flags().GetBool("json")

		input, err := cli.ParseArgs(argsJSON)
		if err != nil {
			return err
		}

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

		var res *macrograph.Result
		if _, statErr := os.Stat(args[0]); statErr == nil {
			res, err = app.Engine.RunGraph(ctx, macro.Graph, input)
		} else {
			res, err = app.Engine.Run(ctx, macro.Name, input)
		}

		if jsonMode {
			out := struct {
				*macrograph.Result
				Calls []string `json:"calls"`
				Error string   `json:"error,omitempty"`
			}{Result: res}
			for _, c := range app.Scene.Calls() {
				out.Calls = append(out.Calls, c.String())
			}
			if err != nil {
				out.Error = err.Error()
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(out); encErr != nil {
				return encErr
			}
			return err
		}

		tui.WriteTrace(os.Stdout, app.Scene.Calls())
		if err != nil {
			if res == nil {
				return err
			}
			return fmt.Errorf("macro %s failed at node %d: %w", macro.Name, res.LastNode(), err)
		}
		cli.PrintSystemMessage("%s finished in %s (%d nodes).", macro.Name, res.Duration, len(res.Executed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("args", "a", "", "Macro arguments as a JSON object")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
}
