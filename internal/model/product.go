package model

import "strings"

// Sentinel is the placeholder stored in any field whose value could not be
// located in the listing markup. A record never carries an empty or absent
// field: callers can rely on all six fields being populated with either
// extracted text or this value.
//
// Design decision: We use a single well-known string rather than an empty
// string or a pointer because:
//  1. The output format requires every key to be present and string-valued
//  2. "Field absent from this listing" and "field not found due to markup
//     drift" are intentionally indistinguishable in the output
//  3. Downstream consumers can filter on one documented value
const Sentinel = "unknown"

// Product is one auction listing extracted from a listing-page container.
// All fields are best-effort; any of them may hold Sentinel.
type Product struct {
	// Title is the listing label, read from the descriptive text (alt
	// attribute) of the container's first image.
	Title string `json:"title"`

	// Link is the absolute URL of the listing detail page.
	Link string `json:"link"`

	// ImageURL is the URL of the listing's first image.
	ImageURL string `json:"image_url"`

	// Location is the positional free-text fragment describing where the
	// item is held.
	Location string `json:"location"`

	// Usage is the positional free-text fragment describing wear or
	// operating hours.
	Usage string `json:"usage"`

	// Description is the positional free-text fragment with the seller's
	// item description.
	Description string `json:"description"`
}

// NewProduct returns a Product with every field set to Sentinel.
// Extraction starts from this value and overwrites the fields it can
// resolve, which keeps the all-fields-populated invariant in one place.
func NewProduct() Product {
	return Product{
		Title:       Sentinel,
		Link:        Sentinel,
		ImageURL:    Sentinel,
		Location:    Sentinel,
		Usage:       Sentinel,
		Description: Sentinel,
	}
}

// Key returns the canonical identity of the record: the full six-field
// tuple joined with an unlikely separator. Two records are duplicates
// exactly when their keys match.
//
// The separator uses ASCII unit separator (0x1f) so field values containing
// ordinary punctuation cannot collide.
func (p Product) Key() string {
	return strings.Join([]string{
		p.Title,
		p.Link,
		p.ImageURL,
		p.Location,
		p.Usage,
		p.Description,
	}, "\x1f")
}

// Equal reports whether two records match on all six fields.
func (p Product) Equal(other Product) bool {
	return p == other
}

// Dedupe collapses exact-duplicate records, keyed on the full field tuple.
// The first occurrence of each distinct record is kept, in input order.
// Dedupe is idempotent: applying it to its own output returns an equal
// slice.
func Dedupe(records []Product) []Product {
	seen := make(map[string]struct{}, len(records))
	unique := make([]Product, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}
