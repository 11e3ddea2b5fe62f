package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/lifecycle"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/spf13/cobra"
)

var watchTypes []string

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print project changes made outside lattice",
	Long: `Watch the project directory and print a line for every created,
modified or deleted project until interrupted. The optional glob pattern
filters project ids; --events restricts the event types (CREATE, MODIFY,
DELETE). Needs the fs adapter.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := openService(lattice.WithMustExist(true), lattice.WithReadOnly(true))
		defer closeService(svc)

		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}
		events, err := svc.Watch(ctx, pattern)
		if err != nil {
			fatal("Failed to watch", err)
		}

		var opts []lifecycle.Option
		if len(watchTypes) > 0 {
			types := make([]core.EventType, len(watchTypes))
			for i, t := range watchTypes {
				types[i] = core.EventType(t)
			}
			opts = append(opts, lifecycle.WithTypes(types...))
		}
		src := lifecycle.NewSource(events, opts...)
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start event source", err)
		}

		fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", pattern)
		for e := range src.Events() {
			fmt.Printf("%s %s\n", time.Now().Format(time.TimeOnly), e)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVar(&watchTypes, "events", nil, "Event types to print (repeatable)")
}
