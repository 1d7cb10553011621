// Package fetcher retrieves listing pages over HTTP and parses them into
// goquery documents.
//
// Each request carries one identification header drawn uniformly at random
// from a fixed pool, and the response body is decoded with the server's
// announced charset before parsing. Failures, whether transport-level or a
// non-2xx status, surface as *RequestError and are never swallowed.
package fetcher
