package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileArchive writes each completion to its own file under a directory.
type FileArchive struct {
	dir string
	now func() time.Time
}

// NewFileArchive creates a FileArchive rooted at dir. The directory is
// created on first use.
func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{dir: dir, now: time.Now}
}

// Store implements Archive.
func (a *FileArchive) Store(_ context.Context, businessName, text string) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(a.dir, objectName(businessName, a.now()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return path, nil
}
