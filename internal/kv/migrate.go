// ABOUTME: Data migration between key-value backends.
// ABOUTME: Copies every key from source to destination.
package kv

import (
	"errors"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated keys.
type MigrateSummary struct {
	Keys    int
	Skipped int
}

// Migrate copies all keys from src to dst. Keys that vanish between
// listing and reading are skipped. Existing destination keys are overwritten.
func Migrate(src, dst Backend) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	keys, err := src.Keys()
	if err != nil {
		return nil, fmt.Errorf("list source keys: %w", err)
	}

	for _, k := range keys {
		val, err := src.Get(k)
		if errors.Is(err, ErrNotFound) {
			summary.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", k, err)
		}
		if err := dst.Set(k, val); err != nil {
			return nil, fmt.Errorf("write %s: %w", k, err)
		}
		summary.Keys++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
