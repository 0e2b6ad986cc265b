package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/chat"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(transcript *chat.Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "sqlite", "db":
		return &SQLiteExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml, md, sqlite)", format)
	}
}

// FormatFromPath picks a format from the file extension of path
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "json", "jsonl", "md":
		return ext, nil
	case "markdown":
		return "md", nil
	case "yaml", "yml":
		return "yaml", nil
	case "db", "sqlite", "sqlite3":
		return "sqlite", nil
	case "":
		return "", fmt.Errorf("cannot infer export format from %q: no file extension", path)
	default:
		return "", fmt.Errorf("cannot infer export format from %q: unknown extension .%s", path, ext)
	}
}

// WriteFile exports transcript to path, choosing the format from its
// extension. It returns the format used.
func WriteFile(transcript *chat.Transcript, path string) (string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return "", &internal.ExportError{Path: path, Err: err}
	}
	exporter, err := NewExporter(format)
	if err != nil {
		return format, &internal.ExportError{Format: format, Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return format, &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(transcript, f); err != nil {
		_ = f.Close()
		return format, &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return format, &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return format, nil
}
