package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/lattice"
	"github.com/spf13/cobra"
)

var (
	initFormat string
	initStore  string
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a lattice project",
	Long: `Initialize a new lattice project in the current directory.
It writes lattice.yaml, prepares the store (running 'git init' for the fs
adapter unless --no-versioning is set) and saves the template page.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := startDir()
		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal("Failed to create directory", err)
		}

		cfg, err := lattice.LoadConfig(dir)
		if err != nil {
			fatal("Failed to read "+lattice.ConfigFileName, err)
		}
		if adapter != "" {
			cfg.Adapter = adapter
		}
		if project != "" {
			cfg.Project = project
		}
		if initFormat != "" {
			cfg.Format = initFormat
		}
		if initStore != "" {
			cfg.Store = initStore
		}
		if nover {
			off := false
			cfg.Versioning = &off
		}
		if _, err := cfg.Options(); err != nil {
			fatal("Invalid configuration", err)
		}
		if err := lattice.WriteConfig(dir, cfg); err != nil {
			fatal("Failed to write "+lattice.ConfigFileName, err)
		}

		ctx := context.Background()
		path, opts := storeOptions(dir, lattice.WithAutoInit(true))
		ws, err := lattice.Open(ctx, path, opts...)
		if err != nil {
			fatal("Failed to initialize store", err)
		}
		if ws.Existed {
			_ = ws.Close(ctx)
			fmt.Printf("Reinitialized lattice project in %s (project %q kept)\n", dir, ws.ProjectID)
			return
		}
		slog.Debug("saving template page", "project", ws.ProjectID)
		save(ws, "create "+ws.ProjectID)
		fmt.Printf("Initialized lattice project %q in %s\n", ws.ProjectID, dir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFormat, "format", "", "File format of new fs projects (.json or .yaml)")
	initCmd.Flags().StringVar(&initStore, "store", "", "Store location relative to the project directory")
}
