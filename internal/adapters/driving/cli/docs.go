package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/extractors"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
)

var (
	docAddTitle    string
	docAddPriority string
	docAddTags     []string
	docAddLang     string
)

// Editors emit several events per save; each file gets a settle window
// before ingestion so one save means one embedding pass.
const (
	watchSettle = 500 * time.Millisecond
	watchTick   = 200 * time.Millisecond
	watchRetry  = 2 * time.Second
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage curated documents",
	Long: `Add local files to the knowledge base as curated content. Curated
chunks carry a priority weight at retrieval time and survive crawl
re-ingestion.`,
}

var docsAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Ingest a local file as curated content",
	Long: `Extracts text from a local file and adds it to the knowledge base.
Markdown, plain text and docx files are supported.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsAdd,
}

var docsWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-ingest files in a directory as they change",
	Long: `Watches a directory and re-ingests every supported file that is
created or written. Subdirectories are not watched. Watched files enter
the knowledge base with default curated options.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsWatch,
}

func init() {
	docsAddCmd.Flags().StringVar(&docAddTitle, "title", "", "override the extracted document title")
	docsAddCmd.Flags().StringVar(&docAddPriority, "priority", "", "retrieval priority: critical, high, standard or reference")
	docsAddCmd.Flags().StringArrayVar(&docAddTags, "tag", nil, "extra tag for the document (repeatable)")
	docsAddCmd.Flags().StringVar(&docAddLang, "lang", "", "document language code")

	docsCmd.AddCommand(docsAddCmd)
	docsCmd.AddCommand(docsWatchCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured: set " + envOpenAIKey)
	}

	opts := domain.CuratedOptions{
		Title:    docAddTitle,
		Language: docAddLang,
		Tags:     docAddTags,
	}
	if docAddPriority != "" {
		p := domain.Priority(docAddPriority)
		if !p.IsValid() {
			return fmt.Errorf("invalid priority %q (want one of %s)", docAddPriority, priorityNames())
		}
		opts.Priority = p
	}

	report, err := ingestService.IngestFile(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", args[0], err)
	}

	title := args[0]
	if len(report.Sources) > 0 {
		title = report.Sources[0].SourceName
	}
	cmd.Printf("Added %q to the knowledge base (%d chunks).\n", title, report.TotalChunksAdded)
	if opts.Priority != "" {
		cmd.Printf("Priority: %s\n", opts.Priority.Description())
	}
	return nil
}

func runDocsWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured: set " + envOpenAIKey)
	}

	dir := filepath.Clean(args[0])
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exts := extractors.NewDefault().SupportedExtensions()
	supported := make(map[string]bool, len(exts))
	for _, ext := range exts {
		supported[ext] = true
	}

	cmd.Printf("Watching %s for %s files. Press Ctrl+C to stop.\n", dir, strings.Join(exts, ", "))
	return watchLoop(ctx, cmd, watcher, supported)
}

// watchLoop drains watcher events until the context ends. Ingestion
// runs inside the loop, one file at a time, because concurrent runs
// would contend on the ingest lock.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, supported map[string]bool) error {
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchAccepts(ev, supported) {
				continue
			}
			if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
				// Gone already, or a new subdirectory.
				continue
			}
			pending[ev.Name] = time.Now().Add(watchSettle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, due := range pending {
				if now.Before(due) {
					continue
				}
				report, err := ingestService.IngestFile(ctx, path, domain.CuratedOptions{})
				switch {
				case errors.Is(err, domain.ErrIngestInProgress):
					// A crawl run holds the ingest lock.
					pending[path] = now.Add(watchRetry)
				case err != nil:
					delete(pending, path)
					cmd.Printf("  FAIL  %s: %v\n", filepath.Base(path), err)
				default:
					delete(pending, path)
					cmd.Printf("  ok    %s (%d chunks)\n", filepath.Base(path), report.TotalChunksAdded)
				}
			}
		}
	}
}

// watchAccepts reports whether a filesystem event should trigger
// re-ingestion. Only create and write events on visible files with a
// supported extension qualify; removes, renames and bare chmods do
// nothing.
func watchAccepts(ev fsnotify.Event, supported map[string]bool) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return supported[strings.ToLower(filepath.Ext(name))]
}

func priorityNames() string {
	all := domain.AllPriorities()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
