// Package blobstore keeps the raw uploaded documents. Rows only hold the
// reference returned by Put.
package blobstore

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("blob not found")
	ErrInvalidReference = errors.New("invalid blob reference")
)

type Store interface {
	// Put stores data under a fresh unique name with the given extension
	// (e.g. ".pdf") and returns its reference.
	Put(ctx context.Context, data []byte, ext string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// newName ignores any client-supplied name so uploads cannot collide or
// escape the store.
func newName(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}
