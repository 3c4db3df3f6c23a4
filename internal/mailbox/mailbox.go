// Package mailbox abstracts where vendor notification documents come from.
//
// A Source lists message envelopes and fetches the HTML body of one
// message. Sources may block on the network and carry their own retry
// behavior; the extraction engine never sees them.
package mailbox

import "context"

// Envelope identifies a message without its body. ID is the idempotency
// key for already-processed bookkeeping; Timestamp is the raw date header
// as the source reports it.
type Envelope struct {
	ID        string
	Subject   string
	Timestamp string
}

// Message is a fetched notification document.
type Message struct {
	ID        string
	Subject   string
	Timestamp string
	HTML      string
}

// Source yields notification messages.
type Source interface {
	// List returns envelopes for the messages currently visible to the
	// source, newest first where the backend supports ordering.
	List(ctx context.Context) ([]Envelope, error)

	// Fetch retrieves one message's HTML body by id.
	Fetch(ctx context.Context, id string) (Message, error)

	// Close releases any backend resources.
	Close() error
}
