// internal/report/json.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONWriter exports the summary to a file.
// The file is written to a temp name and renamed, so readers never see a partial export.
type JSONWriter struct {
	Path string
}

func (w *JSONWriter) Write(s Summary) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode summary: %w", err)
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(w.Path), ".summary-*.json")
	if err != nil {
		return fmt.Errorf("report: create temp for %s: %w", w.Path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("report: write %s: %w", w.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", w.Path, err)
	}
	if err := os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("report: rename to %s: %w", w.Path, err)
	}
	return nil
}
