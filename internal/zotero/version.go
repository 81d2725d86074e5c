// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// VersionFile persists the last synchronized library version as a decimal
// number in a single file.
type VersionFile struct {
	Path string
}

// Read returns the stored version. A missing, unreadable or corrupt file
// reads as 0, which makes the next download a full one.
func (f VersionFile) Read() (int64, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version file %s: %w", f.Path, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("version file %s holds negative version %d", f.Path, v)
	}
	return v, nil
}

// Write replaces the stored version.
func (f VersionFile) Write(version int64) error {
	if err := writeFileAtomic(f.Path, []byte(strconv.FormatInt(version, 10))); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
