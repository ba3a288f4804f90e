// Command tracectl performs offline maintenance on a trace directory:
// listing, statistics, age-based cleanup, and export.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/antoniostano/adpulse/internal/trace"
)

type options struct {
	tracesDir string

	maxAgeDays int
	dryRun     bool

	conversationID string
	all            bool
	out            string
	format         string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tracectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}
	command := args[0]

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	var cfg options
	fs.StringVar(&cfg.tracesDir, "traces-dir", "traces", "directory holding trace files")
	switch command {
	case "cleanup":
		fs.IntVar(&cfg.maxAgeDays, "max-age-days", 30, "remove traces older than this many days")
		fs.BoolVar(&cfg.dryRun, "dry-run", false, "list stale traces without removing them")
	case "export":
		fs.StringVar(&cfg.conversationID, "id", "", "conversation id to export")
		fs.BoolVar(&cfg.all, "all", false, "export every conversation")
		fs.StringVar(&cfg.out, "out", "", "output file (default stdout)")
		fs.StringVar(&cfg.format, "format", trace.FormatJSON, "export format")
	case "list", "stats":
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	store, err := trace.NewFileStore(cfg.tracesDir)
	if err != nil {
		return err
	}

	switch command {
	case "list":
		return runList(store)
	case "stats":
		return runStats(store)
	case "cleanup":
		return runCleanup(store, cfg)
	case "export":
		return runExport(store, cfg)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tracectl <command> [flags]

commands:
  list      list conversations newest first
  stats     aggregate statistics over all conversations
  cleanup   remove traces older than -max-age-days
  export    export one conversation (-id) or all (-all)`)
}

func runList(store *trace.FileStore) error {
	entries := store.List()
	if len(entries) == 0 {
		fmt.Println("no conversations")
		return nil
	}
	for _, e := range entries {
		state := "open"
		if e.EndTime != nil {
			state = "closed"
		}
		category := e.Category
		if category == "" {
			category = "-"
		}
		fmt.Printf("%s  %s  events=%-3d %-8s %-24s %s\n",
			e.ConversationID,
			e.StartTime.Format(time.RFC3339),
			e.EventCount,
			state,
			category,
			e.CompanyName,
		)
	}
	return nil
}

func runStats(store *trace.FileStore) error {
	entries := store.List()
	totalEvents := 0
	open := 0
	categories := map[string]int{}
	for _, e := range entries {
		totalEvents += e.EventCount
		if e.EndTime == nil {
			open++
		}
		if e.Category != "" {
			categories[e.Category]++
		}
	}
	fmt.Printf("conversations: %d (%d open)\n", len(entries), open)
	fmt.Printf("events:        %d\n", totalEvents)
	if len(categories) > 0 {
		fmt.Println("categories:")
		for _, c := range []string{"healthy", "might_need_attention", "need_attention_positive", "need_attention_negative"} {
			if n := categories[c]; n > 0 {
				fmt.Printf("  %-24s %d\n", c, n)
			}
		}
	}
	return nil
}

func runCleanup(store *trace.FileStore, cfg options) error {
	if cfg.maxAgeDays < 0 {
		return fmt.Errorf("max-age-days must be >= 0")
	}
	maxAge := time.Duration(cfg.maxAgeDays) * 24 * time.Hour

	if cfg.dryRun {
		stale := store.StaleTraces(maxAge)
		if len(stale) == 0 {
			fmt.Println("nothing to remove")
			return nil
		}
		for _, id := range stale {
			fmt.Println(id)
		}
		fmt.Printf("%d stale conversation(s), none removed (dry run)\n", len(stale))
		return nil
	}

	removed, err := store.Purge(maxAge)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d conversation(s)\n", removed)
	return nil
}

func runExport(store *trace.FileStore, cfg options) error {
	if cfg.all == (strings.TrimSpace(cfg.conversationID) != "") {
		return fmt.Errorf("exactly one of -id or -all is required")
	}

	var (
		data []byte
		err  error
	)
	if cfg.all {
		data, err = store.ExportAll(cfg.format)
	} else {
		data, err = store.Export(cfg.conversationID, cfg.format)
	}
	if err != nil {
		return err
	}

	if cfg.out == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(cfg.out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", cfg.out)
	return nil
}
