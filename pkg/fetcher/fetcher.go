// Package fetcher retrieves notification documents over HTTP for ad-hoc
// extraction, e.g. a notification re-hosted on an internal web archive.
// The mail path does not go through here.
package fetcher

import (
	"context"
	"time"
)

// Fetcher abstracts document fetching strategies.
type Fetcher interface {
	// Fetch retrieves document content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources.
	Close() error

	// Type returns a string identifying the fetcher type.
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Content represents a fetched document.
type Content struct {
	URL         string
	HTML        string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}
