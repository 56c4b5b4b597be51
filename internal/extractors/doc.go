// Package extractors turns uploaded files into plain text.
//
// Each subpackage handles one format. The Registry picks an extractor by
// MIME type, then by file extension, and falls back to UTF-8 decoding for
// anything that is valid text.
package extractors
