// Package cliutil provides output helpers shared by the CLI and the MCP server.
package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/erraggy/refparser/internal/fileutil"
	"github.com/erraggy/refparser/internal/pathutil"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// WriteOutput writes data to path, or to w when path is "" or "-". Files are
// created owner read/write only. Symlinks and the paths in inputs are
// refused. It returns the path written, or "" for w.
func WriteOutput(w io.Writer, path string, data []byte, inputs ...string) (string, error) {
	if path == "" || path == "-" {
		if _, err := w.Write(data); err != nil {
			return "", fmt.Errorf("cliutil: writing output: %w", err)
		}
		return "", nil
	}
	clean, err := pathutil.SanitizeOutputPath(path, inputs...)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(clean, data, fileutil.OwnerReadWrite); err != nil {
		return "", fmt.Errorf("cliutil: writing %s: %w", clean, err)
	}
	return clean, nil
}
