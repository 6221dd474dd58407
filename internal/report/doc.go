// Package report writes crawl results.
//
// JSONWriter emits the result records as the JSON array consumers expect.
// MarkdownWriter and SimpleWriter render human-readable summaries of the
// same result. Writers implement the Writer interface, so they can be
// combined with MultiWriter or written to disk with WriteFile.
package report
