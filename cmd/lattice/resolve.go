package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/aretw0/lattice/pkg/binding"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/tree"
	"github.com/spf13/cobra"
)

var (
	resolveVars []string
	resolveYAML bool
)

// setVariables dispatches one SetVariable per key=value pair.
func setVariables(ws interface {
	Dispatch(document.Action) error
}, pairs []string) {
	vars, err := parseAssignments(pairs)
	if err != nil {
		fatal("Invalid variable", err)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := ws.Dispatch(document.SetVariable{Name: k, Value: vars[k]}); err != nil {
			fatal("Failed to set variable", err)
		}
	}
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <node-id>",
	Short: "Print the props of a component with bindings evaluated",
	Long: `Evaluate the {{ state.x }} placeholders in the props of a component.
Variables are not stored with the page; pass them with --var key=value.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(context.Background())
		defer ws.Close(context.Background())

		setVariables(ws.Session, resolveVars)
		props, err := ws.Session.ResolvedProps(args[0])
		if err != nil {
			fatal("Failed to resolve props", err)
		}
		if err := encode(os.Stdout, props, resolveYAML); err != nil {
			fatal("Failed to encode", err)
		}
	},
}

var varCmd = &cobra.Command{
	Use:   "var <name> <value>",
	Short: "Preview the components bound to a variable",
	Long: `Set a variable for this run and print every component whose props
reference it, with the props resolved. Variables are runtime state and are
not saved with the page.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(context.Background())
		defer ws.Close(context.Background())

		setVariables(ws.Session, []string{args[0] + "=" + args[1]})
		doc := ws.Session.Document()

		found := 0
		tree.Walk(doc.Root, func(n, _ *core.Node) bool {
			if !bindsTo(n.Props, args[0]) {
				return true
			}
			found++
			props, err := ws.Session.ResolvedProps(n.ID)
			if err != nil {
				fmt.Printf("%s: %v\n", n.ID, err)
				return true
			}
			fmt.Printf("%s [%s]\n", n.ID, n.Type)
			_ = encode(os.Stdout, props, true)
			return true
		})
		if found == 0 {
			fmt.Printf("no component references state.%s\n", args[0])
		}
	},
}

// bindsTo reports whether any string prop references state.name.
func bindsTo(props core.Props, name string) bool {
	ref := regexp.MustCompile(`\bstate\.` + regexp.QuoteMeta(name) + `\b`)
	for _, v := range props {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if slices.ContainsFunc(binding.Refs(s), ref.MatchString) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(resolveCmd, varCmd)
	resolveCmd.Flags().StringArrayVar(&resolveVars, "var", nil, "Variable as key=value (repeatable)")
	resolveCmd.Flags().BoolVar(&resolveYAML, "yaml", false, "Output in YAML format")
}
