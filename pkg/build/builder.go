// Package build implements the corpus ingestion pipeline of spec C6:
// walking a file tree and indexing each matching file, either sequentially
// or in parallel over a shared WorkQueue.
package build

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kentaro-sato/wakachi/pkg/index"
	"github.com/kentaro-sato/wakachi/pkg/normalize"
	"github.com/kentaro-sato/wakachi/pkg/workqueue"
)

var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
}

func hasTextExtension(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}

// AddFile opens path, tokenizes it line by line, and indexes every stem at
// an ever-increasing position into dst. It is a primitive usable on any
// index, shared or thread-local, and the unit the sequential and parallel
// builders both call.
func AddFile(path string, dst index.Searchable) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("build: open %s: %w", path, err)
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	counter := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		for _, stem := range normalize.Stems(scanner.Text()) {
			if stem == "" {
				continue
			}
			counter++
			dst.Add(stem, abs, counter)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("build: read %s: %w", path, err)
	}
	return nil
}

// collectFiles walks root depth-first and returns every file matching the
// indexable extension set, in the order os.ReadDir/filepath.WalkDir visits
// them.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Printf("build: walk %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasTextExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ProgressFunc is called after each file finishes building, with the
// number of files done so far and the total discovered. It mirrors the
// teacher's OnProgress callback shape.
type ProgressFunc func(done, total int)

// BuildSequential walks root and indexes every matching file into dst, one
// file at a time. A per-file read failure is logged and skipped; it does
// not abort the build. ctx is checked between files so a Ctrl-C during a
// long sequential build stops promptly instead of running to completion,
// mirroring the early-exit check in the teacher's Ingester.Ingest loop.
func BuildSequential(ctx context.Context, root string, dst index.Searchable, onProgress ProgressFunc) error {
	files, err := collectFiles(root)
	if err != nil {
		return fmt.Errorf("build: walk %s: %w", root, err)
	}
	for i, path := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := AddFile(path, dst); err != nil {
			log.Printf("build: skipping %s: %v", path, err)
		}
		if onProgress != nil {
			onProgress(i+1, len(files))
		}
	}
	return nil
}

// BuildParallel walks root and submits one task per matching file to a
// freshly created WorkQueue with the given worker count. Each task builds
// a fresh thread-local index.Index, indexes its file into it, then merges
// it into dst once — this keeps the shared write lock contention to one
// acquisition per file instead of one per token. Submission stops as soon
// as ctx is cancelled, and the queue is shut down (discarding whatever is
// still queued) rather than waited on to drain, so Ctrl-C during a
// -threads build actually interrupts it instead of being swallowed.
func BuildParallel(ctx context.Context, root string, dst *index.Locked, workers int, onProgress ProgressFunc) error {
	files, err := collectFiles(root)
	if err != nil {
		return fmt.Errorf("build: walk %s: %w", root, err)
	}

	q := workqueue.New(workers)
	var done int
	var mu sync.Mutex

Loop:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		path := path
		q.Submit(func() {
			local := index.New()
			if err := AddFile(path, local); err != nil {
				log.Printf("build: skipping %s: %v", path, err)
			}
			dst.Merge(local)

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if onProgress != nil {
				onProgress(n, len(files))
			}
		})
	}

	if ctx.Err() != nil {
		q.Shutdown()
		return ctx.Err()
	}

	q.Finish()
	q.Shutdown()
	return nil
}
