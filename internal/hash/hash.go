// Package hash computes the two fingerprints the versioning engine runs on:
// a content hash over exact file bytes, and a content-independent identity
// hash that keeps a logical document stable across edits.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const blockSize = 4096

// ContentHash streams the file through SHA-256 in fixed-size blocks and
// returns the hex digest. Identical bytes always produce identical hashes;
// this is the Version.file_hash.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, blockSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IdentityHash derives the document's unique hash from the sync root and the
// creation timestamp, so edits to the same logical file do not spawn a new
// document. When no creation timestamp exists it falls back to the content
// hash, so a later re-save of such a file registers as a new document.
func IdentityHash(rootPath, createdAt, contentHash string) string {
	var data string
	if createdAt != "" {
		data = rootPath + "_" + createdAt
	} else {
		data = contentHash
	}
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
