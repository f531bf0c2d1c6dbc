package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func formatOutput(w io.Writer, format string, data any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case "ok", "memory":
		return okColor
	default:
		return failColor
	}
}

func printHealth(w io.Writer, h HealthResponse) {
	fmt.Fprintf(w, "Railcore API Health Status:\n")
	fmt.Fprintf(w, "Status:   %s\n", statusColor(h.Status).Sprint(h.Status))
	fmt.Fprintf(w, "Version:  %s\n", h.Version)
	fmt.Fprintf(w, "Time:     %s\n", dimColor.Sprint(h.Time))
	fmt.Fprintf(w, "Database: %s\n", statusColor(h.DB).Sprint(h.DB))
	fmt.Fprintf(w, "Cache:    %s\n", statusColor(h.Cache).Sprint(h.Cache))
}

// writeDocument saves data to out, or to fallback in the working directory
// when out is empty, and returns the path written.
func writeDocument(out, fallback string, data []byte) (string, error) {
	path := out
	if path == "" {
		path = filepath.Base(fallback)
	}
	if path == "" || path == "." || path == string(filepath.Separator) {
		return "", fmt.Errorf("no output path (use --out)")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func reportWritten(w io.Writer, path string, size int) {
	fmt.Fprintf(w, "%s %s %s\n", okColor.Sprint("✓"), path, dimColor.Sprintf("(%d bytes)", size))
}
