package mailbox

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		timestamp string
		messageID string
		want      string
	}{
		{
			timestamp: "Mon, 02 Jan 2024 15:04:05 GMT",
			messageID: "18cde4a2b7f1e3a9",
			want:      "Mon_02_Jan_2024_15-04-05_GMT_18cde4a2b7f1e3a9.html",
		},
		{
			timestamp: "Tue, 5 Mar 2024 09:30:00 +0000",
			messageID: "abc123",
			want:      "Tue_5_Mar_2024_09-30-00_+0000_abc123.html",
		},
		{
			timestamp: "",
			messageID: "bare",
			want:      "_bare.html",
		},
	}
	for _, tt := range tests {
		if got := ArchiveName(tt.timestamp, tt.messageID); got != tt.want {
			t.Errorf("ArchiveName(%q, %q) = %q, want %q",
				tt.timestamp, tt.messageID, got, tt.want)
		}
	}
}

func TestArchiver_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	a := NewArchiver(dir)

	msg := Message{
		ID:        "msg-1",
		Timestamp: "Mon, 02 Jan 2024 15:04:05 GMT",
		HTML:      "<html><body>po</body></html>",
	}
	path, err := a.Save(msg)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if filepath.Base(path) != "Mon_02_Jan_2024_15-04-05_GMT_msg-1.html" {
		t.Errorf("unexpected archive name %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if string(data) != msg.HTML {
		t.Errorf("archived content = %q, want %q", data, msg.HTML)
	}
}

func TestArchiver_SaveOverwritesSameMessage(t *testing.T) {
	a := NewArchiver(t.TempDir())
	msg := Message{ID: "m", Timestamp: "t", HTML: "first"}

	if _, err := a.Save(msg); err != nil {
		t.Fatal(err)
	}
	msg.HTML = "second"
	path, err := a.Save(msg)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("re-archiving should overwrite, got %q", data)
	}
}
