// Package snapshot persists the aggregated records for the dashboard.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"StockBoard/internal/model"
)

// DefaultPath is where the dashboard expects the latest snapshot.
const DefaultPath = "public/data/latest.json"

// Writer persists a complete snapshot, replacing any previous one.
type Writer interface {
	Write(snap model.Snapshot) error
}

// FileWriter writes the snapshot as indented JSON to Path.
type FileWriter struct {
	Path string
}

// NewFileWriter creates a FileWriter; an empty path selects DefaultPath.
func NewFileWriter(path string) *FileWriter {
	if path == "" {
		path = DefaultPath
	}
	return &FileWriter{Path: path}
}

// Write replaces the file atomically: readers see either the old or the new
// snapshot, never a partial one.
func (w *FileWriter) Write(snap model.Snapshot) error {
	if snap == nil {
		snap = model.Snapshot{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".latest-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("replace %s: %w", w.Path, err)
	}
	return nil
}

// Load reads a snapshot written by FileWriter. A missing file yields an empty snapshot.
func Load(path string) (model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Snapshot{}, nil
		}
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}
