package lattice_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/drop"
)

// Example_basic opens a workspace, drops a button into the template card,
// undoes and redoes the drop, then saves and reopens the project.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "lattice-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	ws, err := lattice.Open(ctx, tmpDir, lattice.WithAutoInit(true), lattice.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}

	_, err = ws.Session.DragEnd(drop.Active{Type: core.TypeButton}, &drop.Over{Kind: drop.KindContainerBody, TargetID: "1"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("after drop:", ws.Session.Document().Index().Len())

	ws.Session.Undo()
	fmt.Println("after undo:", ws.Session.Document().Index().Len())

	ws.Session.Redo()
	if err := ws.Save(ctx); err != nil {
		log.Fatal(err)
	}
	if err := ws.Close(ctx); err != nil {
		log.Fatal(err)
	}

	reopened, err := lattice.Open(ctx, tmpDir, lattice.WithVersioning(false))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("reopened:", reopened.Existed, reopened.Session.Document().Index().Len())
	// Output:
	// after drop: 6
	// after undo: 5
	// reopened: true 6
}

// ExampleNew stores a page through the project service.
func ExampleNew() {
	tmpDir, err := os.MkdirTemp("", "lattice-service-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := lattice.New(tmpDir, lattice.WithAutoInit(true), lattice.WithVersioning(false), lattice.WithFormat(".yaml"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	page := core.Page{
		Title: "About",
		Root:  &core.Node{ID: core.RootID, Type: core.TypePage, Name: "Root page", Props: core.Props{}},
	}
	if err := svc.SaveProject(ctx, "about", page); err != nil {
		log.Fatal(err)
	}

	ids, _ := svc.ListProjects(ctx)
	fmt.Println(ids)
	// Output:
	// [about]
}
