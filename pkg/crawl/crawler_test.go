package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kentaro-sato/wakachi/pkg/index"
)

// E4: crawler with limit=2 seeded at a page linking to three distinct
// URLs. consumed size is exactly 2 at end.
func TestScenarioE4LimitHaltsExactlyAtBoundary(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}

	mux := http.NewServeMux()
	var baseURL string

	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits[r.URL.Path]++
			mu.Unlock()
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits["/seed"]++
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body>
			<p>Seed page content words here.</p>
			<a href="%s/one">one</a>
			<a href="%s/two">two</a>
			<a href="%s/three">three</a>
		</body></html>`, baseURL, baseURL, baseURL)
	})
	mux.HandleFunc("/one", page("<html><body><p>Page one content.</p></body></html>"))
	mux.HandleFunc("/two", page("<html><body><p>Page two content.</p></body></html>"))
	mux.HandleFunc("/three", page("<html><body><p>Page three content.</p></body></html>"))

	srv := httptest.NewServer(mux)
	defer srv.Close()
	baseURL = srv.URL

	c := New(2, 3, 1)
	dst := index.NewLocked()
	if err := c.Crawl(context.Background(), baseURL+"/seed", dst); err != nil {
		t.Fatal(err)
	}

	if got := c.Consumed(); got != 2 {
		t.Fatalf("expected consumed == 2, got %d", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits["/seed"] != 1 {
		t.Fatalf("expected seed fetched exactly once, got %d", hits["/seed"])
	}
	if hits["/one"] != 1 {
		t.Fatalf("expected first outbound link fetched exactly once, got %d", hits["/one"])
	}
	if hits["/two"] != 0 || hits["/three"] != 0 {
		t.Fatalf("expected links beyond the limit never fetched, got two=%d three=%d", hits["/two"], hits["/three"])
	}
}

func TestNonHtmlResponseIsDiscarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL, 3)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		t.Fatal("expected nil body for a non-html response")
	}
}

func TestRedirectIsFollowedWithinDepth(t *testing.T) {
	mux := http.NewServeMux()
	var finalURL string
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalURL+"/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>done</body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	finalURL = srv.URL

	body, err := Fetch(context.Background(), srv.Client(), srv.URL+"/start", 3)
	if err != nil {
		t.Fatal(err)
	}
	if body == nil {
		t.Fatal("expected redirect to be followed and body returned")
	}
}

func TestRedirectExhaustedIsDiscarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		t.Fatal("expected exhausted redirects to yield no body")
	}
}
