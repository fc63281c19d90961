package conf

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// writeFileAtomic writes data to a temp file in the same directory, syncs
// it and renames it over path, so a crash leaves either the old or the new
// file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-")
	if err != nil {
		return errors.Wrap(err, "Failed to create temp file")
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return errors.Wrap(err, "Failed to write data")
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(err, "Failed to sync data to disk")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "Failed to close temp file")
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return errors.Wrap(err, "Failed to set file permissions")
	}
	if err = os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "Failed to rename temp file")
	}
	return nil
}
