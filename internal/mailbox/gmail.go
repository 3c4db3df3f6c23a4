package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ordersift/ordersift/internal/logger"
)

// GmailConfig configures the Gmail source. CredentialsFile is the OAuth
// client secret JSON; TokenFile holds a previously granted user token
// (obtain one out of band, e.g. with the provider's quickstart flow).
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	Query           string // subject filter, e.g. "Action Required: PO"
	MaxResults      int64  // 0 means backend default
}

// GmailSource reads notification messages from a Gmail mailbox using the
// readonly scope.
type GmailSource struct {
	svc        *gmail.Service
	query      string
	maxResults int64
}

// NewGmailSource authenticates and returns a Gmail-backed source.
func NewGmailSource(ctx context.Context, cfg GmailConfig) (*GmailSource, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("gmail: read credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("gmail: parse credentials: %w", err)
	}

	tok, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx,
		option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("gmail: create service: %w", err)
	}

	return &GmailSource{
		svc:        svc,
		query:      cfg.Query,
		maxResults: cfg.MaxResults,
	}, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gmail: read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("gmail: parse token: %w", err)
	}
	return &tok, nil
}

// List returns envelopes for messages matching the subject query.
func (s *GmailSource) List(ctx context.Context) ([]Envelope, error) {
	call := s.svc.Users.Messages.List("me").Context(ctx)
	if s.query != "" {
		call = call.Q(fmt.Sprintf("subject:%q", s.query))
	}
	if s.maxResults > 0 {
		call = call.MaxResults(s.maxResults)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: list messages: %w", err)
	}

	envelopes := make([]Envelope, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		meta, err := s.svc.Users.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("gmail: message %s metadata: %w", m.Id, err)
		}
		env := Envelope{ID: m.Id}
		if meta.Payload != nil {
			for _, h := range meta.Payload.Headers {
				switch h.Name {
				case "Subject":
					env.Subject = h.Value
				case "Date":
					env.Timestamp = h.Value
				}
			}
		}
		envelopes = append(envelopes, env)
	}

	logger.Debug("gmail list complete", "query", s.query, "count", len(envelopes))
	return envelopes, nil
}

// Fetch retrieves one message and extracts its HTML body. When the message
// carries no text/html part, the plain-text part is returned instead so
// older notification formats still flow through extraction.
func (s *GmailSource) Fetch(ctx context.Context, id string) (Message, error) {
	m, err := s.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return Message{}, fmt.Errorf("gmail: get message %s: %w", id, err)
	}

	msg := Message{ID: id}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "Subject":
				msg.Subject = h.Value
			case "Date":
				msg.Timestamp = h.Value
			}
		}

		body := findPart(m.Payload, "text/html")
		if body == "" {
			body = findPart(m.Payload, "text/plain")
		}
		decoded, err := decodeBody(body)
		if err != nil {
			return Message{}, fmt.Errorf("gmail: decode message %s body: %w", id, err)
		}
		msg.HTML = decoded
	}

	return msg, nil
}

// findPart walks the (possibly nested) part tree for the first part of the
// wanted MIME type and returns its raw base64url data.
func findPart(p *gmail.MessagePart, mimeType string) string {
	if p == nil {
		return ""
	}
	if p.MimeType == mimeType && p.Body != nil && p.Body.Data != "" {
		return p.Body.Data
	}
	for _, child := range p.Parts {
		if d := findPart(child, mimeType); d != "" {
			return d
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body data, which arrives both
// padded and unpadded depending on the backend.
func decodeBody(data string) (string, error) {
	if data == "" {
		return "", nil
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b), nil
	}
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Close is a no-op; the Gmail client holds no persistent resources.
func (s *GmailSource) Close() error {
	return nil
}
