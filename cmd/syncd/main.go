package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	stdsync "sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	_ "github.com/joho/godotenv/autoload"

	"snipdrop/internal/sync"
)

// syncd mirrors a local file with the server's shared document: local writes
// are debounce-pushed, remote changes are polled and written back to the
// file unless a local edit is still inside the grace window.
func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "snipdrop server base URL")
		file     = flag.String("file", "snippet.txt", "local file to keep in sync")
		language = flag.String("lang", "", "language tag pushed with edits")
		debounce = flag.Duration("debounce", sync.DefaultDebounce, "push debounce after the last local edit")
		poll     = flag.Duration("poll", sync.DefaultPollInterval, "server poll interval")
		grace    = flag.Duration("grace", sync.DefaultGraceWindow, "grace window protecting local edits")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracks the content this process last wrote itself, so the watcher can
	// tell an editor save from the engine applying remote state.
	var mu stdsync.Mutex
	var selfWritten string

	applyRemote := func(doc sync.Document) {
		mu.Lock()
		selfWritten = doc.Content
		mu.Unlock()
		if err := os.WriteFile(*file, []byte(doc.Content), 0o644); err != nil {
			log.Printf("apply remote document: %v", err)
		}
	}

	engine := sync.New(sync.NewHTTPRemote(*server), applyRemote, sync.Options{
		Debounce:     *debounce,
		PollInterval: *poll,
		GraceWindow:  *grace,
	})

	// Seed local state from the file if it already exists.
	if data, err := os.ReadFile(*file); err == nil {
		engine.SetLocal(string(data), *language)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("create watcher: %v", err)
	}
	defer watcher.Close()

	// Watch the directory: editors typically replace the file on save, which
	// would drop a watch on the file itself.
	dir := filepath.Dir(*file)
	if err := watcher.Add(dir); err != nil {
		log.Fatalf("watch %s: %v", dir, err)
	}

	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("sync engine stopped: %v", err)
		}
	}()

	target := filepath.Clean(*file)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors may still be mid-write; a short settle keeps partial
			// reads out of the engine.
			time.Sleep(50 * time.Millisecond)
			data, err := os.ReadFile(*file)
			if err != nil {
				continue
			}
			content := string(data)
			mu.Lock()
			echo := content == selfWritten
			mu.Unlock()
			if echo {
				continue
			}
			engine.SetLocal(content, *language)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}
