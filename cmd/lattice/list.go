package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/aretw0/lattice/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

var listJSON bool

// listEntry is the adapter independent row printed by list.
type listEntry struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Nodes    int       `json:"nodes,omitempty"`
	Modified time.Time `json:"modified"`
}

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List stored projects",
	Long: `List stored projects with their title and last modification. For the
fs adapter an optional glob pattern filters project ids.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(lattice.WithMustExist(true), lattice.WithReadOnly(true))
		defer closeService(svc)

		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		var entries []listEntry
		switch repo := svc.Repository().(type) {
		case *fs.Repository:
			sums, err := repo.Summaries(ctx, pattern)
			if err != nil {
				fatal("Failed to list projects", err)
			}
			for _, s := range sums {
				entries = append(entries, listEntry{ID: s.ID, Title: s.Title, Nodes: s.Nodes, Modified: s.Modified})
			}
		case *sqlite.Repository:
			sums, err := repo.Summaries(ctx)
			if err != nil {
				fatal("Failed to list projects", err)
			}
			for _, s := range sums {
				entries = append(entries, listEntry{ID: s.ID, Title: s.Title, Modified: s.Modified})
			}
		default:
			ids, err := svc.ListProjects(ctx)
			if err != nil {
				fatal("Failed to list projects", err)
			}
			for _, id := range ids {
				entries = append(entries, listEntry{ID: id})
			}
		}

		if listJSON {
			if err := encode(os.Stdout, entries, false); err != nil {
				fatal("Failed to encode", err)
			}
			return
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			modified := ""
			if !e.Modified.IsZero() {
				modified = e.Modified.Local().Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Title, modified)
		}
		tw.Flush()
	},
}

var revisionsLimit int

var revisionsCmd = &cobra.Command{
	Use:   "revisions [project]",
	Short: "Show the Git history of a project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := openWorkspace(ctx, lattice.WithMustExist(true))
		defer ws.Close(ctx)

		id := ws.ProjectID
		if len(args) == 1 {
			id = args[0]
		}
		repo, ok := ws.Service.Repository().(*fs.Repository)
		if !ok {
			fatal("Failed to read history", fmt.Errorf("%T keeps no history", ws.Service.Repository()))
		}
		revs, err := repo.Revisions(ctx, id, revisionsLimit)
		if err != nil {
			fatal("Failed to read history", err)
		}
		for _, r := range revs {
			fmt.Printf("%s %s %s\n", r.Hash[:min(len(r.Hash), 10)], r.When.Local().Format(time.DateTime), r.Subject)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd, revisionsCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	revisionsCmd.Flags().IntVarP(&revisionsLimit, "limit", "n", 20, "Maximum number of revisions")
}
