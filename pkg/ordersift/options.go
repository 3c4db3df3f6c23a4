package ordersift

import (
	"github.com/ordersift/ordersift/internal/mailbox"
	"github.com/ordersift/ordersift/pkg/extract"
	"github.com/ordersift/ordersift/pkg/store"
)

// Config holds processing settings.
type Config struct {
	// Concurrency bounds how many documents are fetched and extracted at
	// once. Store writes stay on a single goroutine regardless.
	Concurrency int

	// MaxBodySize rejects message bodies larger than this many bytes.
	// 0 means unlimited.
	MaxBodySize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 3,
	}
}

// Option configures an Ordersift instance.
type Option func(*Ordersift)

// WithSource sets the message source (required).
func WithSource(s mailbox.Source) Option {
	return func(o *Ordersift) { o.source = s }
}

// WithStore sets the persistence sink (required).
func WithStore(s *store.Store) Option {
	return func(o *Ordersift) { o.store = s }
}

// WithExtractor sets the extractor. Defaults to the current template
// generation's profile.
func WithExtractor(e *extract.Extractor) Option {
	return func(o *Ordersift) { o.extractor = e }
}

// WithArchiver enables raw-copy archiving before extraction.
func WithArchiver(a *mailbox.Archiver) Option {
	return func(o *Ordersift) { o.archiver = a }
}

// WithConcurrency sets the extraction worker count.
func WithConcurrency(n int) Option {
	return func(o *Ordersift) {
		if n > 0 {
			o.config.Concurrency = n
		}
	}
}

// WithMaxBodySize caps accepted message body size in bytes.
func WithMaxBodySize(n int) Option {
	return func(o *Ordersift) {
		if n > 0 {
			o.config.MaxBodySize = n
		}
	}
}
