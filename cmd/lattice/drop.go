package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/spf13/cobra"
)

var dropPalette string

var dropCmd = &cobra.Command{
	Use:   "drop <active> <over>...",
	Short: "Resolve and apply a drag-and-drop gesture",
	Long: `Resolve a drop the way the canvas does. <active> is the dragged id: an
existing node id, or new-<Type>-<n> for a palette item (or use --palette).
Each <over> is a zone id reported under the pointer: canvas-root,
<id>-empty, <id>-end, <id>-drop or a node id for a sibling zone. With
several zones the highest priority one wins.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(context.Background())
		doc := ws.Session.Document()

		active := drop.ParseActive(doc, args[0], core.ComponentType(dropPalette))
		var candidates []drop.Over
		for _, raw := range args[1:] {
			over, ok := drop.ParseOver(doc, raw)
			if !ok {
				fatal("Unknown drop zone", errors.New(raw))
			}
			candidates = append(candidates, over)
		}
		over, _ := drop.Pick(candidates...)

		action, err := ws.Session.DragEnd(active, &over)
		if err != nil {
			fatal("Drop rejected", err)
		}
		save(ws, fmt.Sprintf("drop %s on %s", active, over))
		fmt.Printf("%s %s\n", action.Kind(), action.Key())
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
	dropCmd.Flags().StringVar(&dropPalette, "palette", "", "Treat <active> as a palette item of this type")
}
