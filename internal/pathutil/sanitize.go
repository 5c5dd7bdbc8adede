package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// SanitizeOutputPath cleans an output file path and returns it in absolute
// form. It refuses symlinks and directories, and any path equal to one of
// inputs, so that a command never overwrites the document it read. inputs
// that are URLs never match.
func SanitizeOutputPath(path string, inputs ...string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve absolute path: %w", err)
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("pathutil: refusing to write to symlink: %s", abs)
		}
		if info.IsDir() {
			return "", fmt.Errorf("pathutil: output path is a directory: %s", abs)
		}
	case os.IsNotExist(err):
	default:
		return "", fmt.Errorf("pathutil: cannot stat path: %w", err)
	}

	for _, in := range inputs {
		if in == "" || in == "-" {
			continue
		}
		inAbs, err := filepath.Abs(in)
		if err == nil && inAbs == abs {
			return "", fmt.Errorf("pathutil: output file %s would overwrite input file %s", path, in)
		}
	}
	return abs, nil
}
