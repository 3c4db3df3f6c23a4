package mailbox

import (
	"context"
	"encoding/base64"
	"testing"

	"google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestFindPart_NestedMultipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: b64url("plain")},
					},
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: b64url("<html>body</html>")},
					},
				},
			},
		},
	}

	got := findPart(payload, "text/html")
	if got != b64url("<html>body</html>") {
		t.Errorf("findPart returned %q", got)
	}

	if got := findPart(payload, "text/plain"); got != b64url("plain") {
		t.Errorf("findPart text/plain returned %q", got)
	}
}

func TestFindPart_Missing(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: b64url("plain only")},
	}
	if got := findPart(payload, "text/html"); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if got := findPart(nil, "text/html"); got != "" {
		t.Errorf("nil payload should yield empty result, got %q", got)
	}
}

func TestDecodeBody(t *testing.T) {
	const text = "<html>PO Number</html>"

	padded := base64.URLEncoding.EncodeToString([]byte(text))
	got, err := decodeBody(padded)
	if err != nil {
		t.Fatalf("decode padded: %v", err)
	}
	if got != text {
		t.Errorf("padded decode = %q, want %q", got, text)
	}

	unpadded := base64.RawURLEncoding.EncodeToString([]byte(text))
	got, err = decodeBody(unpadded)
	if err != nil {
		t.Fatalf("decode unpadded: %v", err)
	}
	if got != text {
		t.Errorf("unpadded decode = %q, want %q", got, text)
	}

	if got, err := decodeBody(""); err != nil || got != "" {
		t.Errorf("empty body should decode to empty string, got %q, %v", got, err)
	}

	if _, err := decodeBody("!!not base64!!"); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestNewGmailSource_MissingCredentials(t *testing.T) {
	_, err := NewGmailSource(context.Background(), GmailConfig{
		CredentialsFile: "/nonexistent/credentials.json",
		TokenFile:       "/nonexistent/token.json",
	})
	if err == nil {
		t.Error("expected error for missing credentials file")
	}
}
