package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"corpusview/internal/domain"
	"corpusview/internal/ports"
)

// Stdout is the path value that sends the view to standard output.
const Stdout = "-"

// JSONWriter writes a session view as an indented JSON document.
type JSONWriter struct {
	path   string
	out    io.Writer
	logger *slog.Logger
}

var _ ports.ViewWriter = (*JSONWriter)(nil)

// NewJSONWriter targets a file path; an empty path or "-" means stdout.
func NewJSONWriter(path string, log *slog.Logger) *JSONWriter {
	return &JSONWriter{path: path, out: os.Stdout, logger: log}
}

// NewStreamWriter targets an arbitrary writer.
func NewStreamWriter(w io.Writer, log *slog.Logger) *JSONWriter {
	return &JSONWriter{path: Stdout, out: w, logger: log}
}

// WriteView encodes the view. Files are written to a temporary sibling and
// renamed so readers never observe a partial document.
func (w *JSONWriter) WriteView(ctx context.Context, view domain.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.path == "" || w.path == Stdout {
		if err := encode(w.out, view); err != nil {
			return fmt.Errorf("write view: %w", err)
		}
		w.debug("view written", "target", "stdout", "load_id", view.LoadID)
		return nil
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := encode(tmp, view); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write view: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename view file: %w", err)
	}

	w.debug("view written", "target", w.path, "load_id", view.LoadID)
	return nil
}

func encode(out io.Writer, view domain.View) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func (w *JSONWriter) debug(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
