// Package storage manages the managed copy tree where each document keeps
// its version files.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Copier places version files under <root>/<documentID>/<tag>_<filename>.
type Copier struct {
	root   string
	logger *slog.Logger

	mu      sync.Mutex
	lastTag int64
}

func NewCopier(root string, logger *slog.Logger) *Copier {
	return &Copier{
		root:   root,
		logger: logger.With(slog.String("component", "storage")),
	}
}

// Root returns the managed tree's base directory.
func (c *Copier) Root() string { return c.root }

// NextTag returns a version tag derived from the wall clock. Tags are
// strictly increasing even when two versions land in the same second.
func (c *Copier) NextTag() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().Unix()
	if now <= c.lastTag {
		now = c.lastTag + 1
	}
	c.lastTag = now
	return "v" + strconv.FormatInt(now, 10)
}

// CopyVersion copies src into the document's directory under the given
// tag and returns the destination path.
func (c *Copier) CopyVersion(docID uuid.UUID, tag, src string) (string, error) {
	dir := filepath.Join(c.root, docID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create document directory %s: %w", dir, err)
	}

	dst := filepath.Join(dir, tag+"_"+filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return "", err
	}

	c.logger.Debug("version file copied",
		slog.String("document_id", docID.String()),
		slog.String("dst", dst))
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
