// Package report persists the analysis report as JSON.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/station-climatology/internal/domain"
)

// FileName is the report file written into the output directory.
const FileName = "report.json"

// FileWriter writes the report to a directory. It implements pipeline.Sink.
type FileWriter struct {
	dir    string
	logger *slog.Logger
}

// NewFileWriter creates a FileWriter for dir.
func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	return &FileWriter{dir: dir, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *FileWriter) Name() string { return "report" }

// Path returns the location of the report file.
func (w *FileWriter) Path() string { return filepath.Join(w.dir, FileName) }

// Load encodes the report and replaces any previous file. The file is written
// next to its destination and renamed, so readers never see a partial report.
func (w *FileWriter) Load(ctx context.Context, r domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.Path()); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}

	w.logger.Info("report written", "path", w.Path(), "years", len(r.Extremes))
	return nil
}

// ReadFile decodes a report written by FileWriter.
func ReadFile(path string) (domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Report{}, err
	}
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Report{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return r, nil
}
