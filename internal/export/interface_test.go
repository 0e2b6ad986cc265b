package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/testutil"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantExt string
		wantErr bool
	}{
		{name: "jsonl format", format: "jsonl", wantExt: "jsonl"},
		{name: "markdown format", format: "md", wantExt: "md"},
		{name: "markdown format long", format: "markdown", wantExt: "md"},
		{name: "yaml format", format: "yaml", wantExt: "yaml"},
		{name: "yml alias", format: "YML", wantExt: "yaml"},
		{name: "json format", format: "json", wantExt: "json"},
		{name: "sqlite format", format: "sqlite", wantExt: "db"},
		{name: "unsupported format", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if exporter != nil {
					t.Errorf("NewExporter() returned exporter %T, want nil", exporter)
				}
				return
			}
			if exporter == nil {
				t.Fatal("NewExporter() returned nil exporter")
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Exporter.Extension() = %v, want %v", got, tt.wantExt)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "chat.json", want: "json"},
		{path: "/tmp/chat.jsonl", want: "jsonl"},
		{path: "notes/chat.MD", want: "md"},
		{path: "chat.markdown", want: "md"},
		{path: "chat.yml", want: "yaml"},
		{path: "chat.yaml", want: "yaml"},
		{path: "chat.db", want: "sqlite"},
		{path: "chat.sqlite3", want: "sqlite"},
		{path: "chat", wantErr: true},
		{path: "chat.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.md")

	format, err := WriteFile(testutil.SampleTranscript(), path)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if format != "md" {
		t.Errorf("WriteFile() format = %q, want md", format)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported file is empty")
	}
}

func TestWriteFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{name: "unknown extension", path: filepath.Join(dir, "chat.txt")},
		{name: "missing directory", path: filepath.Join(dir, "missing", "chat.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WriteFile(testutil.SampleTranscript(), tt.path)
			var exportErr *internal.ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("WriteFile() error = %v, want *internal.ExportError", err)
			}
			if exportErr.Path != tt.path {
				t.Errorf("ExportError.Path = %q, want %q", exportErr.Path, tt.path)
			}
		})
	}
}
