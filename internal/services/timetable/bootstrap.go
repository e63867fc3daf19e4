package timetable

import (
	"fmt"
	"os"

	"github.com/ternarybob/colligo/internal/models"
)

// Bootstrap helpers come in two flavors with different conflict semantics.
// The Ensure* variants are the lazy path: an existing target is treated as
// already satisfied. The Create* variants are explicit: an existing target
// is an ErrAlreadyExists, because a caller relying on "this must be new"
// would otherwise silently inherit pre-existing content.

// EnsureDir creates the directory if it does not exist. Returns true when
// the directory was created by this call.
func EnsureDir(path string) (bool, error) {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("path %s exists and is not a directory", path)
		}
		return false, nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return true, nil
}

// EnsureFile creates an empty file if it does not exist. Returns true when
// the file was created by this call.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close file %s: %w", path, err)
	}
	return true, nil
}

// CreateDir creates the directory, failing with ErrAlreadyExists if the
// path is already present.
func CreateDir(path string) error {
	if _, err := os.Stat(path); err == nil {
		return models.NewError(models.ErrAlreadyExists, "directory %s already exists", path)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// CreateFile creates an empty file, failing with ErrAlreadyExists if the
// path is already present.
func CreateFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return models.NewError(models.ErrAlreadyExists, "file %s already exists", path)
		}
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return f.Close()
}
