package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply [script]",
	Short: "Run a batch of editing steps",
	Long: `Run the steps of a YAML script (stdin when omitted or '-') in one
session and save the result once. Steps are insert, props, events, delete,
move, reorder, var, select, title, drop, undo, redo and reset:

  steps:
    - {op: insert, type: Container, as: hero}
    - {op: insert, type: Button, parent: $hero, as: cta}
    - {op: props, id: $cta, props: {children: Go}}
    - {op: undo}
    - {op: drop, active: new-Text-1, over: [$hero-end]}

A rejected step aborts the run and nothing is saved, unless the step is
marked 'optional: true'. --dry-run prints the page instead of saving.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var r io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("Failed to open script", err)
			}
			defer f.Close()
			r = f
		}
		s, err := parseScript(r)
		if err != nil {
			fatal("Failed to read script", err)
		}

		ws := openWorkspace(context.Background())
		results, err := newRunner(ws.Session).run(s)
		for _, res := range results {
			fmt.Fprintln(os.Stderr, res)
		}
		if err != nil {
			fatal("Script failed", err)
		}

		if applyDryRun {
			defer ws.Close(context.Background())
			if err := encode(os.Stdout, ws.Session.Page(), false); err != nil {
				fatal("Failed to encode", err)
			}
			return
		}
		save(ws, fmt.Sprintf("apply %d steps", len(s.Steps)))
		fmt.Printf("Applied %d steps to %s\n", len(results), ws.ProjectID)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print the resulting page without saving")
}
