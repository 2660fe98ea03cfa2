package receipt

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteText stores a rendered ticket at path
func WriteText(path, text string) error {
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file beside path and renames it into
// place, so readers see either the previous file or the complete new one.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
