package upload

import "github.com/scholarbee/scholarbee-api/internal/pkg/apperror"

var (
	ErrOnlyStudents       = apperror.Authorization("only students can upload application documents")
	ErrInvalidKind        = apperror.Validation("kind must be document or receipt")
	ErrInvalidMime        = apperror.Validation("file type is not allowed")
	ErrStorageUnavailable = apperror.Unavailable("document storage is not configured")
)
