package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/kentaro-sato/wakachi/pkg/build"
	"github.com/kentaro-sato/wakachi/pkg/crawl"
	"github.com/kentaro-sato/wakachi/pkg/index"
	"github.com/kentaro-sato/wakachi/pkg/jsonsink"
	"github.com/kentaro-sato/wakachi/pkg/query"
)

func main() {
	pathFlag := flag.String("path", "", "Index files under this path")
	urlFlag := flag.String("url", "", "Crawl from this seed")
	limitFlag := flag.String("limit", "", "Max URLs to crawl (default 50)")
	threadsFlag := flag.String("threads", "", "Enable parallel mode with N workers (default 5)")
	redirectsFlag := flag.String("redirects", "", "Max redirect hops to follow when crawling (default 3)")
	indexFlag := flag.String("index", "index.json", "Emit index JSON")
	countsFlag := flag.String("counts", "counts.json", "Emit count JSON")
	queryFlag := flag.String("query", "", "Read queries from this file")
	exactFlag := flag.Bool("exact", false, "Exact matching instead of prefix")
	resultsFlag := flag.String("results", "results.json", "Emit results JSON")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *pathFlag == "" && *urlFlag == "" {
		fmt.Println("Usage: wakachi -path <dir> | -url <seed> [-query <file>] [-exact] [-threads N] [-limit N] [-redirects N]")
		fmt.Println("  one of -path or -url is required to build an index")
	}

	parallel := *threadsFlag != ""
	workers := parseIntFlag(*threadsFlag, 5, "-threads")
	limit := parseIntFlag(*limitFlag, 50, "-limit")
	redirects := parseIntFlag(*redirectsFlag, 3, "-redirects")

	var searchable index.Searchable

	switch {
	case *pathFlag != "":
		searchable = runBuild(ctx, *pathFlag, parallel, workers)
	case *urlFlag != "":
		searchable = runCrawl(ctx, *urlFlag, limit, redirects, workers)
	}

	if searchable == nil {
		os.Exit(0)
	}

	if err := jsonsink.WriteIndex(*indexFlag, searchable); err != nil {
		log.Printf("main: %v", err)
	} else {
		fmt.Printf("Wrote %s\n", *indexFlag)
	}
	if err := jsonsink.WriteCounts(*countsFlag, searchable); err != nil {
		log.Printf("main: %v", err)
	} else {
		fmt.Printf("Wrote %s\n", *countsFlag)
	}

	if *queryFlag == "" {
		return
	}
	runQuery(*queryFlag, searchable, *exactFlag, parallel, workers, *resultsFlag)
}

// runBuild indexes -path, sequentially when -threads is absent (the
// supplemented resolution of spec §6's ambiguous "enable parallel mode
// when the flag is present" wording) or in parallel otherwise. ctx is the
// same signal.NotifyContext created in main, so a Ctrl-C during indexing
// — sequential or parallel — stops the build instead of being swallowed.
func runBuild(ctx context.Context, path string, parallel bool, workers int) index.Searchable {
	if _, err := os.Stat(path); err != nil {
		log.Printf("main: -path %s: %v", path, err)
		return nil
	}

	if !parallel {
		idx := index.New()
		fmt.Printf("Indexing %s sequentially...\n", path)
		if err := build.BuildSequential(ctx, path, idx, progressPrinter("Indexed")); err != nil {
			log.Printf("main: build %s: %v (emitting what was indexed so far)", path, err)
		}
		return idx
	}

	locked := index.NewLocked()
	fmt.Printf("Indexing %s with %d workers...\n", path, workers)
	if err := build.BuildParallel(ctx, path, locked, workers, progressPrinter("Indexed")); err != nil {
		log.Printf("main: build %s: %v (emitting what was indexed so far)", path, err)
	}
	return locked
}

func runCrawl(ctx context.Context, seed string, limit, redirects, workers int) index.Searchable {
	fmt.Printf("Crawling from %s (limit=%d, redirects=%d, workers=%d)...\n", seed, limit, redirects, workers)
	c := crawl.New(limit, redirects, workers)
	c.OnProgress = func(consumed, limit int) {
		fmt.Printf("Crawled %d/%d\n", consumed, limit)
	}

	locked := index.NewLocked()
	if err := c.Crawl(ctx, seed, locked); err != nil {
		log.Printf("main: crawl %s: %v", seed, err)
		return nil
	}
	return locked
}

func runQuery(path string, searchable index.Searchable, exact, parallel bool, workers int, resultsPath string) {
	var (
		results *query.Results
		err     error
	)
	if parallel {
		results, err = query.ParseQueriesParallel(path, searchable, exact, workers)
	} else {
		results, err = query.ParseQueriesSequential(path, searchable, exact)
	}
	if err != nil {
		log.Printf("main: query %s: %v", path, err)
		return
	}
	if err := jsonsink.WriteResults(resultsPath, results); err != nil {
		log.Printf("main: %v", err)
		return
	}
	fmt.Printf("Wrote %s\n", resultsPath)
}

func progressPrinter(verb string) func(done, total int) {
	return func(done, total int) {
		if total == 0 {
			return
		}
		if done == total || done%50 == 0 {
			fmt.Printf("%s %d/%d files\n", verb, done, total)
		}
	}
}

// parseIntFlag parses raw as an int, falling back to def on a missing or
// malformed value. A malformed -threads/-limit/-redirects value is the
// spec's InvalidNumericFlag error kind: it never aborts the process.
func parseIntFlag(raw string, def int, name string) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("main: invalid value %q for %s, using default %d", raw, name, def)
		return def
	}
	return n
}
