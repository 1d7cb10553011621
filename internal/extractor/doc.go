// Package extractor resolves product records from parsed listing pages.
//
// One record is produced per container node, in document order. Field
// resolution is best-effort: the detail link comes from the container's
// first anchor, the image URL and title from its first image, and the
// location/usage/description triple positionally from the paragraphs of a
// nested content block. Anything the markup does not yield is filled with
// the sentinel value, so records always carry all six fields.
package extractor
