package upload

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/storage"
)

type storageStub struct {
	lastKey  string
	lastType string
	lastTTL  time.Duration
	err      error
}

func (s *storageStub) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (*storage.PresignedUpload, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastKey, s.lastType, s.lastTTL = key, contentType, ttl
	return &storage.PresignedUpload{
		Key:       key,
		UploadURL: "https://bucket.example/" + key + "?sig=1",
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *storageStub) Exists(context.Context, string) (bool, error) { return true, nil }
func (s *storageStub) Delete(context.Context, string) error { return nil }
func (s *storageStub) GetURL(key string) string { return "https://cdn.example/" + key }

func TestPresignIssuesOwnedKey(t *testing.T) {
	st := &storageStub{}
	svc := NewService(st, 5*time.Minute)
	student := user.NewPrincipal(uuid.New(), "student")

	out, err := svc.Presign(context.Background(), student, &PresignRequest{
		Kind:        storage.KindReceipt,
		FileName:    "../../receipt.pdf",
		ContentType: "Application/PDF",
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !storage.IsOwnedKey(out.Key, storage.KindReceipt, student.ID) {
		t.Fatalf("key %q not owned by student", out.Key)
	}
	if !strings.HasSuffix(out.Key, ".pdf") {
		t.Fatalf("expected .pdf key, got %q", out.Key)
	}
	if st.lastType != "application/pdf" || st.lastTTL != 5*time.Minute {
		t.Fatalf("unexpected presign args: %q %v", st.lastType, st.lastTTL)
	}
	if out.FileName != "receipt.pdf" {
		t.Fatalf("expected sanitized file name, got %q", out.FileName)
	}
}

func TestPresignRejections(t *testing.T) {
	student := user.NewPrincipal(uuid.New(), "student")
	sponsor := user.NewPrincipal(uuid.New(), "sponsor")

	cases := []struct {
		name string
		svc  *Service
		p    user.Principal
		req  PresignRequest
		want error
	}{
		{"sponsor", NewService(&storageStub{}, 0), sponsor, PresignRequest{Kind: "document", FileName: "a.pdf", ContentType: "application/pdf"}, ErrOnlyStudents},
		{"no storage", NewService(nil, 0), student, PresignRequest{Kind: "document", FileName: "a.pdf", ContentType: "application/pdf"}, ErrStorageUnavailable},
		{"bad mime", NewService(&storageStub{}, 0), student, PresignRequest{Kind: "document", FileName: "a.exe", ContentType: "application/x-msdownload"}, ErrInvalidMime},
		{"bad kind", NewService(&storageStub{}, 0), student, PresignRequest{Kind: "avatar", FileName: "a.png", ContentType: "image/png"}, ErrInvalidKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.svc.Presign(context.Background(), tc.p, &tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPresignHandlerUnavailable(t *testing.T) {
	h := NewHandler(NewService(nil, 0))
	body := `{"kind":"document","file_name":"cv.pdf","content_type":"application/pdf"}`
	req := httptest.NewRequest(http.MethodPost, "/presign", bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), user.NewPrincipal(uuid.New(), "student")))
	rec := httptest.NewRecorder()

	h.Presign(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPresignHandlerValidation(t *testing.T) {
	h := NewHandler(NewService(&storageStub{}, 0))
	req := httptest.NewRequest(http.MethodPost, "/presign", bytes.NewBufferString(`{"kind":"selfie"}`))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), user.NewPrincipal(uuid.New(), "student")))
	rec := httptest.NewRecorder()

	h.Presign(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
