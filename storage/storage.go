// Package storage keeps article attachments in an S3-compatible bucket
// (Cloudflare R2) or in Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is the subset of a bucket the attachment flow needs.
type ObjectStore interface {
	// Put uploads r under name and returns its public URL.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}

// ObjectName builds a unique, safe key for an article attachment.
func ObjectName(articleID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("articles/%s/%d-%s%s", articleID, time.Now().UTC().Unix(), uuid.NewString(), ext)
}

// DeleteAll removes every named object and returns the first failure.
func DeleteAll(ctx context.Context, store ObjectStore, names []string) error {
	var firstErr error
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := store.Delete(ctx, name); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return firstErr
}
