// Package crawl implements the bounded BFS WebCrawler of spec C7, the
// redirect-following HtmlFetcher, the tolerant LinkParser, and the
// UrlCleaner of spec C9.
package crawl

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/kentaro-sato/wakachi/pkg/index"
	"github.com/kentaro-sato/wakachi/pkg/normalize"
	"github.com/kentaro-sato/wakachi/pkg/workqueue"
)

// ProgressFunc is called each time a URL is admitted, reporting how many
// URLs have been consumed against the configured limit.
type ProgressFunc func(consumed, limit int)

// Crawler holds the bounded-BFS configuration and the shared consumed-URL
// admission set described in spec §4.7 and §5.
type Crawler struct {
	Limit      int
	Redirects  int
	Workers    int
	Client     *http.Client
	OnProgress ProgressFunc

	mu       sync.Mutex
	consumed map[string]bool
}

// New returns a Crawler configured with the given limit (>= 1), redirect
// depth, and worker count for its internal WorkQueue.
func New(limit, redirects, workers int) *Crawler {
	if limit < 1 {
		limit = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Crawler{
		Limit:     limit,
		Redirects: redirects,
		Workers:   workers,
		Client:    &http.Client{Timeout: 30 * time.Second},
		consumed:  make(map[string]bool),
	}
}

// admit performs the atomic check-limit-and-insert described in spec §9:
// a URL is admitted iff fewer than Limit URLs have been consumed so far
// and it was not already in the consumed set. Doing the length check and
// the insert under the same critical section is what prevents |consumed|
// from ever exceeding Limit under concurrent admission attempts.
func (c *Crawler) admit(cleaned string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.consumed) >= c.Limit {
		return false
	}
	if c.consumed[cleaned] {
		return false
	}
	c.consumed[cleaned] = true
	if c.OnProgress != nil {
		c.OnProgress(len(c.consumed), c.Limit)
	}
	return true
}

// Consumed returns the number of URLs admitted so far.
func (c *Crawler) Consumed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.consumed)
}

// Crawl runs the bounded BFS starting from seed, merging every page's
// local index into dst. It submits the seed as the first crawl task, then
// blocks on the WorkQueue's finish barrier until the whole wavefront
// (bounded by Limit) has completed.
func (c *Crawler) Crawl(ctx context.Context, seed string, dst *index.Locked) error {
	cleanedSeed := Clean(seed)
	if !c.admit(cleanedSeed) {
		return nil
	}

	q := workqueue.New(c.Workers)
	c.submitTask(ctx, q, cleanedSeed, dst)
	q.Finish()
	q.Shutdown()
	return nil
}

func (c *Crawler) submitTask(ctx context.Context, q *workqueue.Queue, target string, dst *index.Locked) {
	q.Submit(func() {
		c.crawlOne(ctx, q, target, dst)
	})
}

// crawlOne implements one crawl task: fetch, extract links and admit them
// (step 2, run before indexing so the wavefront unblocks sooner), then
// build a thread-local index over the page's article text and merge it.
func (c *Crawler) crawlOne(ctx context.Context, q *workqueue.Queue, target string, dst *index.Locked) {
	body, err := Fetch(ctx, c.Client, target, c.Redirects)
	if err != nil {
		log.Printf("crawl: fetch %s: %v", target, err)
		return
	}
	if body == nil {
		return
	}

	parsed, err := url.Parse(target)
	if err != nil {
		log.Printf("crawl: parse %s: %v", target, err)
		return
	}

	for _, link := range ListLinks(parsed, string(body)) {
		if c.admit(link) {
			c.submitTask(ctx, q, link, dst)
		}
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		log.Printf("crawl: extract article from %s: %v", target, err)
		return
	}

	local := index.New()
	counter := 0
	for _, stem := range normalize.Stems(article.TextContent) {
		if stem == "" {
			continue
		}
		counter++
		local.Add(stem, target, counter)
	}
	dst.Merge(local)
}
