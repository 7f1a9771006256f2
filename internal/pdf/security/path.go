package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator keeps report file paths inside the documents root
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator for the given documents root. The root
// does not need to exist yet.
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("documents directory cannot be empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve documents directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(absRoot)}, nil
}

// Root returns the absolute documents root
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve joins the segments below the root and rejects the result when it
// escapes the root
func (v *PathValidator) Resolve(segments ...string) (string, error) {
	for _, s := range segments {
		if s == "" || strings.ContainsRune(s, '\x00') {
			return "", fmt.Errorf("invalid path segment %q", s)
		}
	}

	path := filepath.Join(append([]string{v.root}, segments...)...)
	if err := v.ValidatePath(path); err != nil {
		return "", err
	}
	return path, nil
}

// ValidatePath checks that path lies within the root, following symlinks of
// existing paths
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside documents directory: %s", path)
	}
	return nil
}

// IsPathWithinDirectory reports whether path is the root or lies below it
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	if !within(cleanPath, v.root) {
		return false, nil
	}

	realRoot, err := resolveExisting(v.root)
	if err != nil {
		return false, err
	}
	realPath, err := resolveExisting(cleanPath)
	if err != nil {
		return false, err
	}
	return within(realPath, realRoot), nil
}

// resolveExisting evaluates symlinks in the longest existing prefix of path and
// appends the remaining, not yet existing, elements
func resolveExisting(path string) (string, error) {
	rest := ""
	for current := path; ; {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to evaluate symlinks: %w", err)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path, nil
		}
		rest = filepath.Join(filepath.Base(current), rest)
		current = parent
	}
}

// Relative returns path relative to the root using forward slashes
func (v *PathValidator) Relative(path string) (string, error) {
	rel, err := filepath.Rel(v.root, path)
	if err != nil {
		return "", fmt.Errorf("failed to relativize path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
