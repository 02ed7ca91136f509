package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LoadJSON reads a JSON document into v. A missing file or unparseable
// content leaves v untouched and reports ok == false without an error;
// any other read failure propagates.
func LoadJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("unable to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		zap.L().Warn("Discarding unparseable document",
			zap.String("path", path),
			zap.Error(err))
		return false, nil
	}
	return true, nil
}

// SaveJSON atomically replaces path with the indented JSON serialization
// of v.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to serialize %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".doc-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to replace %s: %w", path, err)
	}
	return nil
}
