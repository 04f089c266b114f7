package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Document kinds
const (
	KindDocument = "document"
	KindReceipt  = "receipt"
)

// AllowedMimeTypes for application uploads
var AllowedMimeTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// ExtensionForMime returns the file extension for an allowed MIME type
func ExtensionForMime(mimeType string) (string, error) {
	ext, ok := AllowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		return "", ErrInvalidMimeType
	}
	return ext, nil
}

func validKind(kind string) bool {
	return kind == KindDocument || kind == KindReceipt
}

// NewDocumentKey builds applications/<kind>/<owner>/<uuid><ext>
func NewDocumentKey(kind string, ownerID uuid.UUID, mimeType string) (string, error) {
	if !validKind(kind) {
		return "", ErrInvalidKind
	}
	ext, err := ExtensionForMime(mimeType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%s", keyPrefix(kind, ownerID), uuid.New().String(), ext), nil
}

// IsOwnedKey reports whether key was issued to ownerID for kind
func IsOwnedKey(key, kind string, ownerID uuid.UUID) bool {
	prefix := keyPrefix(kind, ownerID)
	return validKind(kind) && strings.HasPrefix(key, prefix) && len(key) > len(prefix) && !strings.Contains(key, "..")
}

func keyPrefix(kind string, ownerID uuid.UUID) string {
	return "applications/" + kind + "/" + ownerID.String() + "/"
}
