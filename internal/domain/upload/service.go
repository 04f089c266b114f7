package upload

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/pkg/storage"
)

const defaultPresignTTL = 15 * time.Minute

// Service issues presigned upload URLs for application documents
type Service struct {
	storage storage.Storage
	ttl     time.Duration
}

// NewService creates upload service. A nil storage makes every call fail
// with ErrStorageUnavailable.
func NewService(st storage.Storage, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &Service{storage: st, ttl: ttl}
}

// Available reports whether an object store is wired
func (s *Service) Available() bool {
	return s.storage != nil
}

// Presign returns an upload URL under the student's own key prefix
func (s *Service) Presign(ctx context.Context, p user.Principal, req *PresignRequest) (*PresignResponse, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudents
	}
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	key, err := storage.NewDocumentKey(req.Kind, p.ID, req.ContentType)
	switch {
	case errors.Is(err, storage.ErrInvalidKind):
		return nil, ErrInvalidKind
	case errors.Is(err, storage.ErrInvalidMimeType):
		return nil, ErrInvalidMime
	case err != nil:
		return nil, err
	}

	presigned, err := s.storage.PresignPut(ctx, key, strings.ToLower(strings.TrimSpace(req.ContentType)), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	log.Info().
		Str("student_id", p.ID.String()).
		Str("kind", req.Kind).
		Str("key", key).
		Msg("Upload URL issued")

	return &PresignResponse{
		Key:       presigned.Key,
		UploadURL: presigned.UploadURL,
		Method:    presigned.Method,
		Headers:   presigned.Headers,
		FileName:  sanitizeFileName(req.FileName),
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}
