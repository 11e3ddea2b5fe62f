package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	addParent string
	addIndex  string
	addName   string
	addProps  []string

	eventsClear bool
)

var addCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Insert a new component",
	Long: `Insert a new component of the given palette type (Container, Button,
Text, Input). It goes to the end of --parent unless --index is set.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(addIndex)
		if err != nil {
			fatal("Invalid index", err)
		}
		props, err := parseAssignments(addProps)
		if err != nil {
			fatal("Invalid prop", err)
		}

		ws := openWorkspace(context.Background())
		node, ok := ws.Session.NewNode(core.ComponentType(args[0]))
		if !ok {
			fatal("Failed to add component", fmt.Errorf("unknown type %q", args[0]))
		}
		if addName != "" {
			node.Name = addName
		}
		for k, v := range props {
			node.Props[k] = v
		}

		commit(ws, fmt.Sprintf("add %s %s", node.Type, node.ID),
			document.Insert{Node: node, ParentID: addParent, Index: index})
		fmt.Println(node.ID)
	},
}

var setCmd = &cobra.Command{
	Use:   "set <node-id> <key=value>...",
	Short: "Merge props into a component",
	Long: `Merge props into a component. Values are read as JSON when they parse,
otherwise as strings: 'disabled=true' stores a boolean, 'label=OK' a string.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		props, err := parseAssignments(args[1:])
		if err != nil {
			fatal("Invalid prop", err)
		}
		ws := openWorkspace(context.Background())
		commit(ws, "update props of "+args[0], document.UpdateProps{ID: args[0], Props: props})
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <node-id> [file]",
	Short: "Replace the event actions of a component",
	Long: `Replace the event mapping of a component with the one read from file
(or stdin when file is '-' or omitted). The mapping is YAML or JSON:

  onClick:
    - type: showMessage
      config: {content: "Saved", level: success}

Every action must match the schema of its kind; an invalid mapping is
rejected and nothing is saved. --clear removes all events.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		events := core.Events{}
		if !eventsClear {
			var r io.Reader = os.Stdin
			if len(args) == 2 && args[1] != "-" {
				data, err := os.ReadFile(args[1])
				if err != nil {
					fatal("Failed to read events", err)
				}
				r = bytes.NewReader(data)
			}
			dec := yaml.NewDecoder(r)
			dec.KnownFields(true)
			if err := dec.Decode(&events); err != nil && err != io.EOF {
				fatal("Invalid events", err)
			}
		}

		ws := openWorkspace(context.Background())
		commit(ws, "update events of "+args[0], document.UpdateEvents{ID: args[0], Events: events})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <node-id> <parent-id> [index]",
	Short: "Move a component under another container",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		raw := ""
		if len(args) == 3 {
			raw = args[2]
		}
		index, err := parseIndex(raw)
		if err != nil {
			fatal("Invalid index", err)
		}
		ws := openWorkspace(context.Background())
		commit(ws, fmt.Sprintf("move %s to %s", args[0], args[1]),
			document.Move{ID: args[0], NewParentID: args[1], NewIndex: index})
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <parent-id> <from> <to>",
	Short: "Reorder the children of a container",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid index", err)
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			fatal("Invalid index", err)
		}
		ws := openWorkspace(context.Background())
		commit(ws, fmt.Sprintf("reorder children of %s", args[0]),
			document.Reorder{ParentID: args[0], OldIndex: from, NewIndex: to})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <node-id>",
	Short: "Delete a component and its subtree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(context.Background())
		commit(ws, "remove "+args[0], document.Delete{ID: args[0]})
	},
}

var titleCmd = &cobra.Command{
	Use:   "title <title>",
	Short: "Rename the page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(context.Background())
		commit(ws, "rename page", document.SetTitle{Title: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(addCmd, setCmd, eventsCmd, moveCmd, reorderCmd, rmCmd, titleCmd)

	addCmd.Flags().StringVar(&addParent, "parent", core.RootID, "Parent container id")
	addCmd.Flags().StringVar(&addIndex, "index", "end", "Position among the parent's children")
	addCmd.Flags().StringVar(&addName, "name", "", "Display name")
	addCmd.Flags().StringArrayVar(&addProps, "prop", nil, "Prop as key=value (repeatable)")

	eventsCmd.Flags().BoolVar(&eventsClear, "clear", false, "Remove all events")
}
