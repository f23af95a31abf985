package tool

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath resolves path against root (if relative) and rejects it
// if the canonicalized result escapes root. Both path and root are made
// absolute and clean (filepath.Abs, filepath.Join or filepath.Clean) and
// then resolved with filepath.EvalSymlinks, falling back to the absolute
// (unresolved) form when
// canonicalization fails (e.g. the path does not yet exist, as for a
// file a tool is about to create).
func ValidatePath(path, root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}
	canonRoot := canonicalizeBestEffort(absRoot)

	var absPath string
	if filepath.IsAbs(path) {
		absPath = filepath.Clean(path)
	} else {
		absPath = filepath.Join(absRoot, path)
	}
	canonPath := canonicalizeBestEffort(absPath)

	if canonPath != canonRoot && !strings.HasPrefix(canonPath, canonRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside project root %q", path, root)
	}
	return canonPath, nil
}

func canonicalizeBestEffort(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
