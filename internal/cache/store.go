// Package cache implements component H: persisting a RunManifest between
// invocations so a later run can skip re-timing an unchanged class
// (--no-save-cache/--no-load-cache/--no-use-cache turn this off). Grounded
// on the teacher's pkg/filespill.go gob-encoding idiom; the atomic
// temp-file-then-rename step is new here.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	m "github.com/pragmatics/jumble/internal/model"
)

// ErrNotFound is returned by Load when no manifest exists for a fingerprint.
var ErrNotFound = errors.New("cache: no manifest for this fingerprint")

// Store persists RunManifests under a directory, one file per target class,
// keyed by the target class's content hash (the test fingerprint is checked
// on Load, not part of the file name).
type Store struct {
	Dir string
}

// New constructs a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating cache dir: %w", err)
	}

	return &Store{Dir: dir}, nil
}

func (s *Store) path(targetFingerprint string) string {
	return filepath.Join(s.Dir, targetFingerprint+".gob")
}

// Load reads the manifest for a class's content fingerprint. It returns
// ErrNotFound (wrapped) if no manifest has been saved for it, or if the
// saved manifest's TestFingerprint no longer matches testFingerprint (the
// test suite changed since the manifest was written, so its ordering and
// timing are stale).
func (s *Store) Load(targetFingerprint, testFingerprint string) (*m.RunManifest, error) {
	f, err := os.Open(s.path(targetFingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("cache: opening manifest: %w", err)
	}
	defer f.Close()

	var manifest m.RunManifest

	if err := gob.NewDecoder(f).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("cache: decoding manifest: %w", err)
	}

	if manifest.Version != m.ManifestVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrNotFound, manifest.Version, m.ManifestVersion)
	}

	if manifest.TestFingerprint != testFingerprint {
		return nil, fmt.Errorf("%w: test suite changed since cache was written", ErrNotFound)
	}

	return &manifest, nil
}

// Save writes a manifest atomically: encode to a sibling temp file, fsync,
// then rename over the final path, so a crash mid-write never leaves a
// corrupt manifest behind for the next Load to choke on.
func (s *Store) Save(manifest m.RunManifest) error {
	final := s.path(manifest.TargetFingerprint)

	tmp, err := os.CreateTemp(s.Dir, "manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("cache: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := gob.NewEncoder(tmp).Encode(manifest); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: encoding manifest: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, final); err != nil {
		return fmt.Errorf("cache: renaming into place: %w", err)
	}

	return nil
}
