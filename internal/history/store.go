package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrRecordExists is returned when a hand record is already stored at a path.
var ErrRecordExists = fmt.Errorf("history: record already stored: %w", fs.ErrExist)

// storeRecord publishes data at path only if nothing is there yet. The record
// is staged next to its final name and hard-linked into place, so a reader
// never sees a partial file and an existing record is never replaced.
func storeRecord(path string, data []byte) error {
	staged, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("history: stage record: %w", err)
	}
	name := staged.Name()
	defer os.Remove(name)

	_, err = staged.Write(data)
	if err == nil {
		err = staged.Sync()
	}
	if cerr := staged.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err != nil {
		return fmt.Errorf("history: stage record: %w", err)
	}

	if err := os.Link(name, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrRecordExists, path)
		}
		return fmt.Errorf("history: publish record: %w", err)
	}
	return nil
}
