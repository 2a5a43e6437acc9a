package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Rrens/qorix-chat/internal/domain"
)

// URLPrefix is where the API serves attachment blobs
const URLPrefix = "/api/v1/attachments/"

// BlobStore keeps attachments as files under dir/<sessionID>/<uuid><ext>
type BlobStore struct {
	dir string
}

// NewBlobStore creates the upload directory if needed
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Put writes data and returns the URL the API serves it under
func (s *BlobStore) Put(_ context.Context, sessionID, name string, data []byte) (string, error) {
	if !validSegment(sessionID) {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !validSegment("x"+ext) {
		ext = mimetype.Detect(data).Extension()
	}
	blobID := uuid.New().String() + ext

	sessionDir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	destPath := filepath.Join(sessionDir, blobID)
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return URLPrefix + sessionID + "/" + blobID, nil
}

// Open returns the blob content and its sniffed MIME type
func (s *BlobStore) Open(_ context.Context, sessionID, blobID string) (io.ReadCloser, string, error) {
	if !validSegment(sessionID) || !validSegment(blobID) {
		return nil, "", domain.ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, sessionID, blobID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read blob: %w", err)
	}

	return io.NopCloser(bytes.NewReader(data)), mimetype.Detect(data).String(), nil
}

// Release deletes the blob behind url
func (s *BlobStore) Release(_ context.Context, url string) error {
	rest, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return nil
	}
	sessionID, blobID, ok := strings.Cut(rest, "/")
	if !ok || !validSegment(sessionID) || !validSegment(blobID) {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, sessionID, blobID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

// ReleaseSession deletes every blob of a session
func (s *BlobStore) ReleaseSession(_ context.Context, sessionID string) error {
	if !validSegment(sessionID) {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(s.dir, sessionID)); err != nil {
		return fmt.Errorf("failed to remove session blobs: %w", err)
	}
	return nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." &&
		!strings.ContainsAny(s, `/\`) && filepath.Base(s) == s
}
