package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose  bool
	workDir  string
	project  string
	adapter  string
	nover    bool
	message  string
	typeFlag string
	scope    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "A schema engine for visual page builders",
	Long: `Lattice edits page component trees stored as JSON or YAML files
(optionally versioned with Git) or in a SQLite database.
Every edit is one undoable action; each command saves the result.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&workDir, "dir", "C", "", "Run as if started in this directory")
	flags.StringVarP(&project, "project", "p", "", "Project id (default from lattice.yaml or current-project)")
	flags.StringVar(&adapter, "adapter", "", "Storage adapter: fs or sqlite")
	flags.BoolVar(&nover, "no-versioning", false, "Do not commit saves to Git")
	flags.StringVarP(&message, "message", "m", "", "Change reason (commit message)")
	flags.StringVarP(&typeFlag, "type", "t", "", "Change type (feat, fix, etc)")
	flags.StringVarP(&scope, "scope", "s", "", "Commit scope")
}
