package plugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/referrors"
)

// DefaultMaxFileSize is the default limit on a single document's size.
const DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

// FileOptions configures the built-in file resolver.
type FileOptions struct {
	// Root, when set, restricts reads to files inside this directory.
	// Reads outside it fail with referrors.ErrPathTraversal.
	Root string
	// MaxFileSize limits the size of a file; 0 uses DefaultMaxFileSize and a
	// negative value disables the limit
	MaxFileSize int64
}

// NewFileResolver returns the built-in resolver for local paths and file://
// URLs.
func NewFileResolver(opts FileOptions) Resolver {
	maxSize := opts.MaxFileSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}
	return Resolver{
		Name:  NameFile,
		Order: OrderFile,
		CanRead: Func(func(file *FileInfo) bool {
			return file.URL != "" && locator.IsFileSystemPath(file.URL)
		}),
		Read: func(ctx context.Context, file *FileInfo) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			path := locator.ToFilePath(file.URL)
			if opts.Root != "" {
				if err := checkWithinRoot(opts.Root, path); err != nil {
					return nil, err
				}
			}
			return readFileLimited(path, maxSize)
		},
	}
}

// checkWithinRoot fails when path escapes root.
func checkWithinRoot(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve file path: %w", err)
	}
	// filepath.Rel also fails for paths on different volumes
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s is outside %s: %w", path, root, referrors.ErrPathTraversal)
	}
	return nil
}

func readFileLimited(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // G304 - path comes from the document being resolved
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readLimited(f, maxSize)
}

// readLimited reads r fully, failing with a ResourceLimitError when it holds
// more than maxSize bytes. A negative maxSize disables the limit.
func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize < 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, &referrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        maxSize,
			Message:      "document exceeds maximum size",
		}
	}
	return data, nil
}
