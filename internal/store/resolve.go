package store

import (
	"errors"
	"fmt"
	"os"
)

// ErrContentDirNotFound indicates no content directory could be resolved.
var ErrContentDirNotFound = errors.New("content directory not found")

// DefaultContentDir is tried when neither a flag nor GITA_CONTENT_DIR is set.
const DefaultContentDir = "content"

// ResolveContentDir determines the content directory based on priority chain.
// Priority: explicit > GITA_CONTENT_DIR env > ./content
// The resolved path must exist and be a directory.
func ResolveContentDir(explicit string) (string, error) {
	if explicit != "" {
		return checkDir(ExpandHome(explicit), "content dir")
	}

	if env := os.Getenv("GITA_CONTENT_DIR"); env != "" {
		return checkDir(ExpandHome(env), "GITA_CONTENT_DIR")
	}

	return checkDir(DefaultContentDir, "default content dir")
}

func checkDir(path, source string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s %q: %w", source, path, ErrContentDirNotFound)
		}
		return "", fmt.Errorf("%s %q: %w", source, path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s %q is not a directory: %w", source, path, ErrContentDirNotFound)
	}
	return path, nil
}
