// SPDX-License-Identifier: MIT

// Command sieve imports recorded classifier predictions into a label store,
// merges them with a configured sieve engine and records the merged labels.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmunell/micro-util-sub002/config"
	"github.com/cmunell/micro-util-sub002/logger"
	"github.com/cmunell/micro-util-sub002/logger/console"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sieve",
		Short: "Joint inference over recorded classifier predictions",
		Long: `sieve merges the labels of several classifiers into one consistent
labeling per partition.

Predictions are imported into a SQLite label store, replayed through the
engine selected in the config file (sieve, random or precedence), closed
under the configured transforms, and stored as a run.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config (defaults when empty)")
	rootCmd.PersistentFlags().String("db", "", "Label store path (overrides store.path)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newImportCmd(),
		newRunCmd(),
		newLabelsCmd(),
		newRunsCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sieve version %s\n", version)

			return nil
		},
	}
}

// loadConfig reads --config, applies --db and starts the console logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	logger.Init(console.New(console.Params{Debug: cfg.Log.Debug, Writer: cmd.ErrOrStderr()}))

	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
