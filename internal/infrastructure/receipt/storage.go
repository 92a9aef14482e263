package receipt

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage archives issued receipt documents and serves them back for the
// download endpoint. References are storage-relative paths.
type Storage interface {
	Store(ctx context.Context, schoolID uuid.UUID, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, reference string) (io.ReadCloser, error)
}

// FileSystemStorage keeps receipts on the local file system under
// {base}/{school_id}/{name}
type FileSystemStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemStorage creates a file system receipt store rooted at basePath
func NewFileSystemStorage(basePath string, logger *zap.Logger) (*FileSystemStorage, error) {
	if basePath == "" {
		basePath = "./receipts"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory %s: %w", basePath, err)
	}
	return &FileSystemStorage{basePath: basePath, logger: logger}, nil
}

// Store writes the document and returns its storage-relative reference
func (s *FileSystemStorage) Store(ctx context.Context, schoolID uuid.UUID, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if schoolID == uuid.Nil {
		return "", fmt.Errorf("school is required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("receipt document is empty")
	}

	dirPath := filepath.Join(s.basePath, schoolID.String())
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create receipt directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirPath, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	reference := filepath.ToSlash(filepath.Join(schoolID.String(), name))
	s.logger.Debug("receipt stored",
		zap.String("reference", reference),
		zap.Int("bytes", len(data)))
	return reference, nil
}

// Get opens a stored receipt by its reference. Absolute paths and paths
// escaping the base directory are rejected.
func (s *FileSystemStorage) Get(ctx context.Context, reference string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanPath := filepath.Clean(reference)
	if filepath.IsAbs(cleanPath) || containsDotDot(reference) {
		s.logger.Warn("blocked receipt path", zap.String("reference", reference))
		return nil, fmt.Errorf("invalid receipt reference")
	}

	fullPath := filepath.Join(s.basePath, cleanPath)
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return nil, err
	}
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("receipt path escape blocked", zap.String("reference", reference))
		return nil, fmt.Errorf("invalid receipt reference")
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("receipt not found")
		}
		return nil, fmt.Errorf("failed to open receipt: %w", err)
	}
	return file, nil
}

func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Ensure FileSystemStorage implements Storage
var _ Storage = (*FileSystemStorage)(nil)
