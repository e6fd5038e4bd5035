// Package media handles image uploads for doctors, medicines, and articles.
// It defines the Uploader interface, an HTTP implementation that forwards
// files to the configured upload service, and an in-memory implementation
// for testing and development.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingFileName    = errors.New("file name is required")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxFileSize is the maximum allowed upload size in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// AllowedContentTypes lists accepted MIME types. Video types are needed
// for article media blocks.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
	"video/mp4":  true,
	"video/webm": true,
}

// Upload describes one incoming file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Validate applies the size and content-type limits shared by all uploaders.
func (u Upload) Validate() error {
	if strings.TrimSpace(u.FileName) == "" {
		return ErrMissingFileName
	}
	if u.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	if !AllowedContentTypes[u.ContentType] {
		return ErrInvalidContentType
	}
	return nil
}

// Uploader stores a file and returns the public URL where it is served.
type Uploader interface {
	Upload(ctx context.Context, up Upload) (string, error)
}

// HTTPUploader forwards files to an external upload service as multipart
// form data.
type HTTPUploader struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPUploader(endpoint, apiKey string) *HTTPUploader {
	return &HTTPUploader{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, up Upload) (string, error) {
	if err := up.Validate(); err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", uniqueName(up.FileName))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return "", fmt.Errorf("copy file body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload service returned status %d", resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("upload service returned empty url")
	}
	return result.URL, nil
}

// MemoryUploader keeps uploaded bytes in memory and serves synthetic URLs.
// Used in tests and development.
type MemoryUploader struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{files: make(map[string][]byte)}
}

func (m *MemoryUploader) Upload(ctx context.Context, up Upload) (string, error) {
	if err := up.Validate(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(up.Body)
	if err != nil {
		return "", fmt.Errorf("read file body: %w", err)
	}

	name := uniqueName(up.FileName)
	m.mu.Lock()
	m.files[name] = data
	m.mu.Unlock()

	return "memory://uploads/" + name, nil
}

// Get returns the stored bytes for a name, for test assertions.
func (m *MemoryUploader) Get(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

func uniqueName(fileName string) string {
	ext := path.Ext(fileName)
	return uuid.NewString() + ext
}
