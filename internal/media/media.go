package media

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
)

var (
	// ErrUnsupportedType is returned for uploads that are not a supported image format.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge is returned when an upload exceeds the configured size limit.
	ErrTooLarge = errors.New("image too large")
)

// sniffBytes is how much of the upload is inspected to detect its type.
const sniffBytes = 3072

var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// ImageStore keeps uploaded post images and returns the URL they are served from.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Remove deletes an image previously returned by Save. Unknown URLs are not an error.
	Remove(ctx context.Context, url string) error
}

// DiskStore writes images into a local directory that the HTTP server exposes.
type DiskStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewDiskStore creates dir if needed. Files are served under baseURL.
func NewDiskStore(dir, baseURL string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Remove deletes the file behind url.
func (s *DiskStore) Remove(_ context.Context, url string) error {
	name := strings.TrimPrefix(url, s.baseURL+"/")
	if name == url || name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// Save detects the image type from its content, writes it as name plus the matching
// extension and returns its public URL.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read image: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head).String()
	ext, ok := allowed[detected]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}
	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		return "", ErrTooLarge
	}

	filename := filepath.Base(name) + ext
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, filename)); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.baseURL + "/" + filename, nil
}
