package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportYAML     bool
	exportRevision string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the page to a file or stdout",
	Long: `Write the stored page as JSON (or YAML with --yaml or a .yaml output
file). --revision exports the page as it was in an earlier Git commit.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		ws := openWorkspace(ctx)
		defer ws.Close(ctx)

		page := ws.Session.Page()
		if exportRevision != "" {
			repo, ok := ws.Service.Repository().(*fs.Repository)
			if !ok {
				fatal("Failed to export revision", errors.New("revisions need the fs adapter"))
			}
			p, err := repo.GetRevision(ctx, ws.ProjectID, exportRevision)
			if err != nil {
				fatal("Failed to export revision", err)
			}
			page = p
		}

		var w io.Writer = os.Stdout
		asYAML := exportYAML
		if exportOutput != "" && exportOutput != "-" {
			ext := strings.ToLower(filepath.Ext(exportOutput))
			asYAML = asYAML || ext == ".yaml" || ext == ".yml"
			f, err := os.Create(exportOutput)
			if err != nil {
				fatal("Failed to create output", err)
			}
			defer f.Close()
			w = f
		}
		if err := encode(w, page, asYAML); err != nil {
			fatal("Failed to encode", err)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the page with one read from a file",
	Long: `Load a page from a JSON or YAML file and save it as the current
project. A page without a root or a title, or with duplicate ids, is
rejected.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			fatal("Failed to open page", err)
		}
		defer f.Close()

		var s fs.Serializer = fs.NewJSONSerializer(false)
		if ext := strings.ToLower(filepath.Ext(args[0])); ext == ".yaml" || ext == ".yml" {
			s = fs.NewYAMLSerializer()
		}
		page, err := s.Parse(f)
		if err != nil {
			fatal("Failed to parse page", err)
		}

		ws := openWorkspace(context.Background())
		if err := ws.Session.Load(page); err != nil {
			fatal("Failed to load page", err)
		}
		save(ws, "import "+filepath.Base(args[0]))
		fmt.Printf("Imported %q into %s\n", page.Title, ws.ProjectID)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a stored project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(lattice.WithMustExist(true))
		defer closeService(svc)
		ctx := lattice.WithChangeReason(context.Background(), changeReason("delete "+args[0]))
		if err := svc.DeleteProject(ctx, args[0]); err != nil {
			fatal("Failed to delete project", err)
		}
		fmt.Printf("Project deleted: %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd, deleteCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportYAML, "yaml", false, "Output in YAML format")
	exportCmd.Flags().StringVar(&exportRevision, "revision", "", "Git revision to export")
}
