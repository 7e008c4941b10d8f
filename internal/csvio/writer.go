package csvio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/gocarina/gocsv"
	"github.com/rhyrak/fce-compiler/pkg/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// WriteOptions control how a summary is serialized.
type WriteOptions struct {
	Format   Format
	Callback string // JSON only; wraps the payload as callback(<payload>);
	Brotli   bool   // also write a brotli-compressed copy next to the output
}

// EncodeJSON serializes the summary as an object keyed by course id, keys in
// ascending order. A non-empty callback wraps it for script-tag loading.
func EncodeJSON(summary model.Summary, callback string) ([]byte, error) {
	var buf bytes.Buffer
	if callback != "" {
		buf.WriteString(callback)
		buf.WriteByte('(')
	}

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if summary == nil {
		summary = model.Summary{}
	}
	if err := enc.Encode(summary); err != nil {
		return nil, fmt.Errorf("csvio: encode json: %w", err)
	}
	// Encode terminates the value with a newline
	buf.Truncate(buf.Len() - 1)

	if callback != "" {
		buf.WriteString(");")
	}
	return buf.Bytes(), nil
}

// EncodeCSV serializes the summary as one row per course, ordered by id.
func EncodeCSV(summary model.Summary) ([]byte, error) {
	rows := summary.Rows()
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("csvio: encode csv: %w", err)
	}
	return data, nil
}

// Encode serializes the summary in the requested format.
func Encode(summary model.Summary, opts WriteOptions) ([]byte, error) {
	switch opts.Format {
	case FormatJSON, "":
		return EncodeJSON(summary, opts.Callback)
	case FormatCSV:
		if opts.Callback != "" {
			return nil, fmt.Errorf("csvio: callback is only supported for json output")
		}
		return EncodeCSV(summary)
	}
	return nil, fmt.Errorf("csvio: unknown format %q", opts.Format)
}

// ExportSummary writes the summary to path, creating the parent directory.
// Returns the paths of every file written.
func ExportSummary(summary model.Summary, path string, opts WriteOptions) ([]string, error) {
	data, err := Encode(summary, opts)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("csvio: write %s: %w", path, err)
	}
	written := []string{path}

	if opts.Brotli {
		brPath := path + ".br"
		if err := writeBrotli(brPath, data); err != nil {
			return written, err
		}
		written = append(written, brPath)
	}
	return written, nil
}

func writeBrotli(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: create %s: %w", path, err)
	}
	defer out.Close()

	w := brotli.NewWriterLevel(out, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("csvio: compress %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("csvio: compress %s: %w", path, err)
	}
	return out.Close()
}

// CheckWritable fails if a file cannot be created at path. Used to reject a
// bad output location before any input is processed. Missing parent
// directories are not created; the nearest existing one is probed instead.
func CheckWritable(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("csvio: output %s is a directory", path)
	}
	dir, err := existingParent(path)
	if err != nil {
		return fmt.Errorf("csvio: output %s not writable: %w", path, err)
	}
	probe, err := os.CreateTemp(dir, ".fce-probe-*")
	if err != nil {
		return fmt.Errorf("csvio: output %s not writable: %w", path, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func existingParent(path string) (string, error) {
	dir := filepath.Dir(path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("csvio: create output dir: %w", err)
		}
	}
	return nil
}
