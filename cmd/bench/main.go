package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/fs"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/editor"
)

func main() {
	count := flag.Int("count", 1000, "Number of projects to generate")
	ops := flag.Int("ops", 10000, "Number of random edits to run")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "lattice_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	listBench(benchDir, *count)
	editBench(*ops)
}

// listBench measures Summaries on a store written behind the repository's
// back, first cold and then with the summary cache.
func listBench(dir string, count int) {
	fmt.Printf("Generating %d projects in %s...\n", count, dir)
	startGen := time.Now()
	codec := fs.NewJSONSerializer(false)
	for i := 0; i < count; i++ {
		page := document.TemplatePage()
		page.Title = fmt.Sprintf("Page %d", i)
		data, err := codec.Serialize(page)
		if err != nil {
			panic(err)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("page_%d.json", i)), data, 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	open := func() *fs.Repository {
		repo, err := lattice.Init(dir, lattice.WithLogger(logger), lattice.WithAutoInit(true), lattice.WithVersioning(false))
		if err != nil {
			panic(err)
		}
		return repo.(*fs.Repository)
	}
	ctx := context.Background()

	fmt.Println("Running Summaries (Run 1 - Cold)...")
	start := time.Now()
	cold, err := open().Summaries(ctx, "")
	if err != nil {
		panic(err)
	}
	coldTook := time.Since(start)

	// A new repository reads the persisted cache, as a new CLI run would.
	fmt.Println("Running Summaries (Run 2 - Warm)...")
	start = time.Now()
	warm, err := open().Summaries(ctx, "")
	if err != nil {
		panic(err)
	}
	warmTook := time.Since(start)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Summaries (%d projects):\n", count)
	fmt.Printf("  Cold: %v (items: %d)\n", coldTook, len(cold))
	fmt.Printf("  Warm: %v (items: %d)\n", warmTook, len(warm))
	fmt.Printf("--------------------------------------------------\n")
}

// editBench runs random drops, prop edits, deletes and undos against one
// session and reports the mean time per operation.
func editBench(n int) {
	f := drop.DefaultFactory()
	f.NewID = drop.Sequence("b")
	s := editor.New(editor.WithFactory(f))
	types := []core.ComponentType{core.TypeContainer, core.TypeButton, core.TypeText, core.TypeInput}
	rng := rand.New(rand.NewPCG(1, 2))

	rejected := 0
	start := time.Now()
	for i := 0; i < n; i++ {
		ids := s.Document().Index().IDs()
		target := ids[rng.IntN(len(ids))]
		var err error
		switch rng.IntN(10) {
		case 0, 1, 2, 3:
			_, err = s.DragEnd(drop.Active{Type: types[rng.IntN(len(types))]}, &drop.Over{Kind: drop.KindContainerBody, TargetID: target})
		case 4, 5:
			err = s.Dispatch(document.UpdateProps{ID: target, Props: core.Props{"n": i}})
		case 6:
			err = s.Dispatch(document.Delete{ID: target})
		case 7:
			_, err = s.DragEnd(drop.Active{ID: target}, &drop.Over{Kind: drop.KindCanvas, TargetID: core.RootID})
		case 8:
			s.Undo()
		case 9:
			s.Redo()
		}
		if err != nil {
			rejected++
		}
	}
	took := time.Since(start)

	if err := s.Document().Verify(); err != nil {
		panic(err)
	}
	fmt.Printf("Edits (%d ops): %v total, %v/op, %d rejected, %d nodes\n",
		n, took, took/time.Duration(max(n, 1)), rejected, s.Document().Index().Len())
}
