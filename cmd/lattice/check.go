package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/tree"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [project...]",
	Short: "Validate stored projects",
	Long: `Load every stored project (or the given ones) and verify the tree:
sentinel root, unique ids, no empty children and valid event actions.
Exits with status 1 when a project fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc := openService(lattice.WithMustExist(true))
		defer closeService(svc)

		ids := args
		if len(ids) == 0 {
			var err error
			if ids, err = svc.ListProjects(ctx); err != nil {
				fatal("Failed to list projects", err)
			}
		}

		failed := 0
		for _, id := range ids {
			if err := checkProject(ctx, svc, id); err != nil {
				failed++
				fmt.Printf("FAIL %s: %v\n", id, err)
				continue
			}
			fmt.Printf("ok   %s\n", id)
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d projects failed\n", failed, len(ids))
			os.Exit(1)
		}
	},
}

func checkProject(ctx context.Context, svc *core.Service, id string) error {
	page, err := svc.GetProject(ctx, id)
	if err != nil {
		return err
	}
	doc, err := document.FromPage(page)
	if err != nil {
		return err
	}
	if err := tree.Verify(doc.Root, doc.Index()); err != nil {
		return err
	}

	var errs []error
	tree.Walk(doc.Root, func(n, _ *core.Node) bool {
		if err := n.Events.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", n.ID, err))
		}
		return true
	})
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
