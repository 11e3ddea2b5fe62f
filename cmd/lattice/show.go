package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/spf13/cobra"
)

var (
	showYAML bool
	showTree bool
)

var showCmd = &cobra.Command{
	Use:   "show [node-id]",
	Short: "Print the page or one node",
	Long: `Print the current page as JSON (or YAML with --yaml). With a node id,
print only that subtree. --tree prints an indented outline instead.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(context.Background())
		defer ws.Close(context.Background())

		doc := ws.Session.Document()
		node := doc.Root
		if len(args) == 1 {
			n, ok := doc.Find(args[0])
			if !ok {
				fatal("Failed to show node", fmt.Errorf("%s: %w", args[0], core.ErrNotFound))
			}
			node = n
		}

		if showTree {
			printOutline(node, 0)
			return
		}

		var v any = ws.Session.Page()
		if len(args) == 1 {
			v = node
		}
		if err := encode(os.Stdout, v, showYAML); err != nil {
			fatal("Failed to encode", err)
		}
	},
}

func printOutline(n *core.Node, depth int) {
	label := n.Name
	if text, ok := n.Props["children"].(string); ok && text != "" {
		label = fmt.Sprintf("%s %q", label, text)
	}
	fmt.Printf("%s%s [%s] %s\n", strings.Repeat("  ", depth), n.ID, n.Type, label)
	for _, c := range n.Children {
		printOutline(c, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Output in YAML format")
	showCmd.Flags().BoolVar(&showTree, "tree", false, "Print an indented outline")
}
