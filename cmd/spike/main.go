package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/git"
)

// Saves projects from many goroutines into one git-backed store and checks
// that every save produced exactly one commit.
func main() {
	workers := flag.Int("workers", 100, "Number of concurrent savers")
	flag.Parse()

	if !git.IsInstalled() {
		log.Fatal("git is not installed")
	}

	tmpDir, err := os.MkdirTemp("", "lattice-spike-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	log.Printf("work dir: %s", tmpDir)

	svc, err := lattice.New(tmpDir, lattice.WithAutoInit(true), lattice.WithVersioning(true))
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []error
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			page := document.TemplatePage()
			page.Title = fmt.Sprintf("Page %d", id)
			reason := lattice.FormatChangeReason(lattice.ChangeTypeChore, "spike", fmt.Sprintf("save page %d", id), "")
			if err := svc.SaveProject(lattice.WithChangeReason(ctx, reason), fmt.Sprintf("page-%d", id), page); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	took := time.Since(start)

	for _, err := range failures {
		log.Printf("save failed: %v", err)
	}

	client := git.NewClient(tmpDir, "", nil)
	out, err := client.Run("log", "--oneline", "--grep", "(spike)")
	if err != nil {
		log.Fatalf("git log failed: %v", err)
	}
	commits := 0
	if out != "" {
		commits = len(strings.Split(out, "\n"))
	}
	status, _ := client.Status()

	log.Printf("%d saves in %v (%d failed), %d commits, clean tree: %v",
		*workers, took, len(failures), commits, status == "")
	if commits != *workers-len(failures) || status != "" {
		log.Fatal("commit count or tree state does not match the saves")
	}
	os.RemoveAll(tmpDir)
}
