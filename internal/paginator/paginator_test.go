package paginator

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// parseDoc builds a goquery document from a markup fragment.
func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture markup: %v", err)
	}
	return doc
}

// TestNext tests next-page resolution.
func TestNext(t *testing.T) {
	t.Parallel()

	p := New("ul.pagination", "https://www.industrialauctionhub.com/lots", "page")

	t.Run("last entry's href becomes the page parameter", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="pagination">
			<li><a href="1">1</a></li>
			<li><a href="2">2</a></li>
			<li><a href="3">next</a></li>
		</ul>`

		next, ok := p.Next(parseDoc(t, html))
		if !ok {
			t.Fatal("expected a next page")
		}
		want := "https://www.industrialauctionhub.com/lots?page=3"
		if next != want {
			t.Errorf("next = %q, expected %q", next, want)
		}
	})

	t.Run("missing pagination control means no next page", func(t *testing.T) {
		t.Parallel()

		if _, ok := p.Next(parseDoc(t, `<html><body><p>single page</p></body></html>`)); ok {
			t.Error("expected no next page without a pagination control")
		}
	})

	t.Run("empty control means no next page", func(t *testing.T) {
		t.Parallel()

		if _, ok := p.Next(parseDoc(t, `<ul class="pagination"></ul>`)); ok {
			t.Error("expected no next page for an empty control")
		}
	})

	t.Run("last entry without a link means no next page", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="pagination">
			<li><a href="4">4</a></li>
			<li><span>next</span></li>
		</ul>`

		if _, ok := p.Next(parseDoc(t, html)); ok {
			t.Error("expected no next page when the last entry has no link")
		}
	})

	t.Run("last entry with an empty href means no next page", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="pagination"><li><a href="">next</a></li></ul>`

		if _, ok := p.Next(parseDoc(t, html)); ok {
			t.Error("expected no next page for an empty href")
		}
	})

	t.Run("reference is query-escaped into the URL", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="pagination"><li><a href="2&amp;sort=asc">next</a></li></ul>`

		next, ok := p.Next(parseDoc(t, html))
		if !ok {
			t.Fatal("expected a next page")
		}
		want := "https://www.industrialauctionhub.com/lots?page=2%26sort%3Dasc"
		if next != want {
			t.Errorf("next = %q, expected %q", next, want)
		}
	})

	t.Run("only the first matching control is consulted", func(t *testing.T) {
		t.Parallel()

		html := `
			<ul class="pagination"><li><a href="5">next</a></li></ul>
			<ul class="pagination"><li><a href="9">bottom next</a></li></ul>`

		next, ok := p.Next(parseDoc(t, html))
		if !ok {
			t.Fatal("expected a next page")
		}
		if !strings.HasSuffix(next, "page=5") {
			t.Errorf("next = %q, expected the top control's reference", next)
		}
	})
}
