// Package fingerprint computes a stable digest over a corpus directory,
// used to decide whether the persisted vector index must be rebuilt.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/docsage/docsage/internal/core/domain"
)

// Option configures fingerprint computation.
type Option func(*options)

type options struct {
	recursive   bool
	contentHash bool
}

// WithRecursive includes files in subdirectories.
// By default only immediate files are fingerprinted.
func WithRecursive() Option {
	return func(o *options) {
		o.recursive = true
	}
}

// WithContentHash folds each file's content digest into the fingerprint,
// so editing a file in place invalidates the index even when no file is
// added or removed. Without it the fingerprint covers file names only.
func WithContentHash() Option {
	return func(o *options) {
		o.contentHash = true
	}
}

// Compute returns the hex SHA-256 digest of the directory's file set.
// The file list is sorted lexicographically before hashing, so the
// result is deterministic across calls and processes: identical file
// sets always yield identical digests.
//
// Returns domain.ErrDirectoryNotFound if the directory does not exist.
func Compute(dir string, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, dir)
		}
		return "", fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrDirectoryNotFound, dir)
	}

	names, err := listFiles(dir, o.recursive)
	if err != nil {
		return "", err
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		// Separator keeps ["ab","c"] distinct from ["a","bc"].
		io.WriteString(h, name)
		io.WriteString(h, "\n")

		if o.contentHash {
			digest, err := hashFile(filepath.Join(dir, name))
			if err != nil {
				return "", fmt.Errorf("hash %s: %w", name, err)
			}
			io.WriteString(h, digest)
			io.WriteString(h, "\n")
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// listFiles returns file names relative to dir using forward slashes.
func listFiles(dir string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory: %w", err)
		}
		var names []string
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				names = append(names, entry.Name())
			}
		}
		return names, nil
	}

	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return names, nil
}

// hashFile returns the hex SHA-256 digest of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Short returns a truncated digest for display.
func Short(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
