package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lotscan/internal/extractor"
	"lotscan/internal/fetcher"
	"lotscan/internal/model"
	"lotscan/internal/paginator"
)

const pageOne = `<html><body>
<ul class="lot-list">
	<li class="lot-tile">
		<a href="/lot/1"><img src="/img/1.jpg" alt="Excavator"></a>
		<div class="lot-details"><p>Lot 1</p><p>Rotterdam</p><p>x</p><p>4200 h</p><p>One owner.</p></div>
	</li>
	<li class="lot-tile">
		<a href="/lot/2"><img src="/img/2.jpg" alt="Wheel Loader"></a>
		<div class="lot-details"><p>Lot 2</p><p>Antwerp</p><p>x</p><p>7100 h</p><p>Fleet machine.</p></div>
	</li>
	<li class="lot-tile">
		<a href="/lot/3"></a>
		<div class="lot-details"><p>Lot 3</p><p>Hamburg</p><p>x</p><p>900 h</p><p>Like new.</p></div>
	</li>
</ul>
<ul class="pagination"><li><a href="1">1</a></li><li><a href="2">next</a></li></ul>
</body></html>`

const pageTwo = `<html><body>
<ul class="lot-list">
	<li class="lot-tile">
		<a href="/lot/4"><img src="/img/4.jpg" alt="Telehandler"></a>
		<div class="lot-details"><p>Lot 4</p><p>Lyon</p><p>x</p><p>3300 h</p><p>Recent service.</p></div>
	</li>
</ul>
</body></html>`

// newListingServer serves two listing pages linked by pagination.
func newListingServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	fetches := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/lots", func(w http.ResponseWriter, r *http.Request) {
		fetches++
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, pageTwo)
			return
		}
		fmt.Fprint(w, pageOne)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &fetches
}

// newPipeline builds a crawler over real pipeline components against srv.
func newPipeline(srv *httptest.Server, opts ...Option) *Crawler {
	f := fetcher.New(5 * time.Second)
	e := extractor.New("li.lot-tile", "div.lot-details", extractor.WithBaseURL(srv.URL))
	p := paginator.New("ul.pagination", srv.URL+"/lots", "page")

	opts = append([]Option{WithDelayRange(0, 0)}, opts...)
	return New(f, e, p, opts...)
}

// TestCrawl tests the end-to-end page walk.
func TestCrawl(t *testing.T) {
	t.Parallel()

	t.Run("walks pagination to exhaustion and accumulates records", func(t *testing.T) {
		t.Parallel()

		srv, fetches := newListingServer(t)
		c := newPipeline(srv)

		records, err := c.Crawl(context.Background(), srv.URL+"/lots")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(records) != 4 {
			t.Fatalf("expected 4 records before dedupe, got %d", len(records))
		}
		if *fetches != 2 {
			t.Errorf("expected exactly 2 page fetches, got %d", *fetches)
		}
		if c.PagesFetched() != 2 {
			t.Errorf("PagesFetched = %d, expected 2", c.PagesFetched())
		}

		// The container without an image carries sentinels for the
		// image-derived fields but still resolves the rest.
		broken := records[2]
		if broken.Title != model.Sentinel || broken.ImageURL != model.Sentinel {
			t.Errorf("expected sentinel title/image for the imageless container, got %+v", broken)
		}
		if broken.Link != srv.URL+"/lot/3" {
			t.Errorf("imageless container link = %q", broken.Link)
		}
		if broken.Location != "Hamburg" {
			t.Errorf("imageless container location = %q", broken.Location)
		}

		// Records arrive in page order, then document order.
		wantTitles := []string{"Excavator", "Wheel Loader", model.Sentinel, "Telehandler"}
		for i, title := range wantTitles {
			if records[i].Title != title {
				t.Errorf("record %d title = %q, expected %q", i, records[i].Title, title)
			}
		}
	})

	t.Run("fetch failure is fatal and keeps earlier records", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/lots", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				http.Error(w, "gone", http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, pageOne)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := newPipeline(srv)
		records, err := c.Crawl(context.Background(), srv.URL+"/lots")
		if err == nil {
			t.Fatal("expected the second page's failure to abort the crawl")
		}

		var reqErr *fetcher.RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected *fetcher.RequestError, got %T", err)
		}
		if reqErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, expected 500", reqErr.StatusCode)
		}
		if len(records) != 3 {
			t.Errorf("expected the 3 first-page records alongside the error, got %d", len(records))
		}
	})

	t.Run("pagination loop stops the crawl", func(t *testing.T) {
		t.Parallel()

		// Every page points at page 1, including page 1 itself.
		looping := `<html><body>
			<li class="lot-tile"><img src="/i.jpg" alt="Lot"></li>
			<ul class="pagination"><li><a href="1">next</a></li></ul>
		</body></html>`

		mux := http.NewServeMux()
		mux.HandleFunc("/lots", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, looping)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := newPipeline(srv)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		records, err := c.Crawl(ctx, srv.URL+"/lots")
		if err != nil {
			t.Fatalf("expected loop to stop cleanly, got %v", err)
		}
		// start page + the page=1 variant, then the loop closes.
		if c.PagesFetched() != 2 {
			t.Errorf("PagesFetched = %d, expected 2", c.PagesFetched())
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("page cap stops the crawl", func(t *testing.T) {
		t.Parallel()

		srv, fetches := newListingServer(t)
		c := newPipeline(srv, WithMaxPages(1))

		records, err := c.Crawl(context.Background(), srv.URL+"/lots")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if *fetches != 1 {
			t.Errorf("expected 1 fetch under the cap, got %d", *fetches)
		}
		if len(records) != 3 {
			t.Errorf("expected 3 records from the single page, got %d", len(records))
		}
	})

	t.Run("recorder sees one visit per page", func(t *testing.T) {
		t.Parallel()

		srv, _ := newListingServer(t)
		rec := &captureRecorder{}
		c := newPipeline(srv, WithRecorder(rec))

		if _, err := c.Crawl(context.Background(), srv.URL+"/lots"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(rec.visits) != 2 {
			t.Fatalf("expected 2 recorded visits, got %d", len(rec.visits))
		}
		if rec.visits[0].StatusCode != http.StatusOK {
			t.Errorf("visit status = %d", rec.visits[0].StatusCode)
		}
		if len(rec.visits[0].Records) != 3 || len(rec.visits[1].Records) != 1 {
			t.Errorf("unexpected per-visit record counts: %d, %d",
				len(rec.visits[0].Records), len(rec.visits[1].Records))
		}
	})

	t.Run("recorder failure does not stop the crawl", func(t *testing.T) {
		t.Parallel()

		srv, _ := newListingServer(t)
		rec := &captureRecorder{err: errors.New("disk full")}
		c := newPipeline(srv, WithRecorder(rec))

		records, err := c.Crawl(context.Background(), srv.URL+"/lots")
		if err != nil {
			t.Fatalf("recorder failure must not abort the crawl, got %v", err)
		}
		if len(records) != 4 {
			t.Errorf("expected 4 records, got %d", len(records))
		}
	})

	t.Run("cancelled context aborts between pages", func(t *testing.T) {
		t.Parallel()

		srv, _ := newListingServer(t)

		f := fetcher.New(5 * time.Second)
		e := extractor.New("li.lot-tile", "div.lot-details")
		p := paginator.New("ul.pagination", srv.URL+"/lots", "page")
		// A long pinned delay so cancellation lands inside the pause.
		c := New(f, e, p, WithDelayRange(10*time.Second, 10*time.Second))

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		records, err := c.Crawl(ctx, srv.URL+"/lots")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected the first page's records, got %d", len(records))
		}
	})
}

// captureRecorder collects page visits for assertions.
type captureRecorder struct {
	visits []PageVisit
	err    error
}

func (r *captureRecorder) RecordPage(_ context.Context, visit PageVisit) error {
	if r.err != nil {
		return r.err
	}
	r.visits = append(r.visits, visit)
	return nil
}

// TestRobotsAllowed tests the pre-crawl robots.txt consultation.
func TestRobotsAllowed(t *testing.T) {
	t.Parallel()

	t.Run("disallowed path is refused", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "User-agent: *\nDisallow: /lots\n")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		if RobotsAllowed(context.Background(), srv.Client(), srv.URL+"/lots", "lotscan") {
			t.Error("expected /lots to be disallowed")
		}
	})

	t.Run("allowed path passes", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "User-agent: *\nDisallow: /admin\n")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		if !RobotsAllowed(context.Background(), srv.Client(), srv.URL+"/lots", "lotscan") {
			t.Error("expected /lots to be allowed")
		}
	})

	t.Run("missing robots.txt counts as permission", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if !RobotsAllowed(context.Background(), srv.Client(), srv.URL+"/lots", "lotscan") {
			t.Error("expected a missing robots.txt to allow the crawl")
		}
	})
}
