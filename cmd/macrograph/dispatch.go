package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/macrograph/internal/presentation/tui"
	"github.com/aretw0/macrograph/pkg/command"
	"github.com/spf13/cobra"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch [response]",
	Short: "Run the actions of a command response",
	Long: `Parses a command response ({"actions": [{"<macro>": {<args>}}]}) and runs
each action in order. Without an argument the response is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		response, err := argOrStdin(args)
		if err != nil {
			return err
		}

		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		outcomes, err := app.Engine.Dispatch(cmd.Context(), response)
		tui.WriteTrace(os.Stdout, app.Scene.Calls())
		printOutcomes(outcomes)
		return err
	},
}

var interpretCmd = &cobra.Command{
	Use:   "interpret <request>",
	Short: "Match a free-text request to a macro and run it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		outcomes, err := app.Engine.Interpret(cmd.Context(), strings.Join(args, " "))
		tui.WriteTrace(os.Stdout, app.Scene.Calls())
		printOutcomes(outcomes)
		return err
	},
}

func init() {
	rootCmd.AddCommand(dispatchCmd, interpretCmd)
}

func argOrStdin(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printOutcomes(outcomes []command.Outcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("✗ %s: %v\n", o.Action.Macro, o.Err)
			continue
		}
		fmt.Printf("✓ %s\n", o.Action.Macro)
	}
}
