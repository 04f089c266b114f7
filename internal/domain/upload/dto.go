package upload

import "time"

// PresignRequest asks for a one-off PUT URL
type PresignRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=document receipt"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
}

// PresignResponse is returned to the client. The client PUTs the file to
// UploadURL and then references Key from the application or receipt.
type PresignResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	FileName  string            `json:"file_name"`
	ExpiresAt time.Time         `json:"expires_at"`
}
