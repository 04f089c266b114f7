package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrInvalidKind     = errors.New("unknown document kind")
)

// Storage defines the object store used for application documents.
// Clients upload directly with a presigned URL; the API only signs and checks.
type Storage interface {
	// PresignPut returns a URL the client can PUT the file to until ttl elapses.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (*PresignedUpload, error)

	// Exists reports whether an object was uploaded under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes an object. Returns nil if it doesn't exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a key.
	GetURL(key string) string
}

// PresignedUpload describes a signed direct upload
type PresignedUpload struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}
