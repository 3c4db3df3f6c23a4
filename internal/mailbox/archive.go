package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// archiveExt is the fixed extension for archived message copies.
const archiveExt = ".html"

// timestampSanitizer makes a raw date header filesystem-safe. The rule is
// fixed: colons become dashes, commas are deleted, spaces become
// underscores. External tooling parses these names, so the mapping must
// not change.
var timestampSanitizer = strings.NewReplacer(":", "-", ",", "", " ", "_")

// ArchiveName returns the archive filename for a message: the sanitized
// timestamp joined with the message id plus the fixed extension.
func ArchiveName(timestamp, messageID string) string {
	return timestampSanitizer.Replace(timestamp) + "_" + messageID + archiveExt
}

// Archiver writes raw message copies to a directory before extraction, so
// a failed or disputed extraction can be replayed from the original
// markup.
type Archiver struct {
	dir string
}

// NewArchiver creates an archiver rooted at dir.
func NewArchiver(dir string) *Archiver {
	return &Archiver{dir: dir}
}

// Save writes the message's raw HTML under the archive naming rule and
// returns the written path.
func (a *Archiver) Save(msg Message) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: mkdir: %w", err)
	}
	path := filepath.Join(a.dir, ArchiveName(msg.Timestamp, msg.ID))
	if err := os.WriteFile(path, []byte(msg.HTML), 0o644); err != nil {
		return "", fmt.Errorf("archive: write %s: %w", path, err)
	}
	return path, nil
}
