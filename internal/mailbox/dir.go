package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DirSource reads notification documents from a directory of .html files.
// It exists for offline reprocessing of archived messages and for tests;
// the filename (without extension) is the message id and the file mtime is
// the timestamp.
type DirSource struct {
	dir string
}

// NewDirSource creates a directory-backed source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List returns one envelope per .html/.htm file, sorted by name.
func (s *DirSource) List(ctx context.Context) ([]Envelope, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("dir source: read %s: %w", s.dir, err)
	}

	var envelopes []Envelope
	for _, e := range entries {
		if e.IsDir() || !isHTMLFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("dir source: stat %s: %w", e.Name(), err)
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		envelopes = append(envelopes, Envelope{
			ID:        id,
			Subject:   id,
			Timestamp: info.ModTime().UTC().Format(time.RFC1123),
		})
	}
	sort.Slice(envelopes, func(i, j int) bool { return envelopes[i].ID < envelopes[j].ID })
	return envelopes, nil
}

// Fetch reads the file for the given message id.
func (s *DirSource) Fetch(ctx context.Context, id string) (Message, error) {
	for _, ext := range []string{".html", ".htm"} {
		path := filepath.Join(s.dir, id+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Message{}, fmt.Errorf("dir source: read %s: %w", path, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return Message{}, fmt.Errorf("dir source: stat %s: %w", path, err)
		}
		return Message{
			ID:        id,
			Subject:   id,
			Timestamp: info.ModTime().UTC().Format(time.RFC1123),
			HTML:      string(data),
		}, nil
	}
	return Message{}, fmt.Errorf("dir source: no file for message %q", id)
}

// Close is a no-op.
func (s *DirSource) Close() error {
	return nil
}

func isHTMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
