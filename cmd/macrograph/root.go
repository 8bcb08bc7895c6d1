package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/macrograph/internal/cli"
	"github.com/aretw0/macrograph/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "macrograph",
	Short: "macrograph runs node-graph macros against a 3D scene",
	Long: `macrograph stores scene-editing macros as node graphs, runs them with
arguments and turns command responses ({"actions": [...]}) into macro invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("store", "", "Macro store backend: memory, file, loam or redis")
	rootCmd.PersistentFlags().String("store-path", "", "Directory of the file and loam stores")
	rootCmd.PersistentFlags().Int("objects", cli.DefaultObjects, "Number of boxes in the scene")
}

// newApp builds the engine from the persistent flags.
func newApp(cmd *cobra.Command, hooks func(*slog.Logger) domain.LifecycleHooks) (*cli.App, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	debug, _ := flags.GetBool("debug")
	backend, _ := flags.GetString("store")
	storePath, _ := flags.GetString("store-path")
	objects, _ := flags.GetInt("objects")

	return cli.NewApp(cmd.Context(), cli.Options{
		ConfigPath: configPath,
		Debug:      debug,
		Backend:    backend,
		StorePath:  storePath,
		Objects:    objects,
		Hooks:      hooks,
	})
}

// resolveMacro reads ref as a document when it names an existing file and
// loads it from the catalog otherwise.
func resolveMacro(ctx context.Context, app *cli.App, ref string) (*domain.Macro, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return cli.ReadMacroFile(ref)
	}
	return app.Engine.Store().Load(ctx, ref)
}
