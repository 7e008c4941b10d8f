package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rhyrak/fce-compiler/internal/layout"
	"github.com/rhyrak/fce-compiler/internal/logging"
	"github.com/rhyrak/fce-compiler/pkg/model"
	"github.com/xuri/excelize/v2"
)

// ErrSourceNotFound is returned when an input path does not exist.
var ErrSourceNotFound = errors.New("source not found")

// LayoutError reports a file none of whose rows could be mapped to the
// canonical columns.
type LayoutError struct {
	File    string
	Row     int           // 1-based header row; 0 when no header row was found
	Closest *layout.Error // nil when the file had no candidate header at all
}

func (e *LayoutError) Error() string {
	if e.Closest == nil {
		return fmt.Sprintf("csvio: %s: no header row found", e.File)
	}
	if e.Row > 0 {
		return fmt.Sprintf("csvio: %s: header row %d matches no known layout; closest %s", e.File, e.Row, e.Closest.Error())
	}
	return fmt.Sprintf("csvio: %s: no header row matches a known layout; closest %s", e.File, e.Closest.Error())
}

// Sheets that hold export notes rather than evaluation rows.
var skipSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// IsSupported reports whether the file extension is one the loader can read.
func IsSupported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

// ListSourceFiles expands the given sources into the files to read. A
// directory contributes every supported file directly inside it, in name
// order. Every source is checked before anything is read.
func ListSourceFiles(sources []string) ([]string, error) {
	var files []string
	for _, src := range sources {
		info, err := os.Stat(src)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csvio: %w: %s", ErrSourceNotFound, src)
		}
		if err != nil {
			return nil, fmt.Errorf("csvio: %w", err)
		}
		if !info.IsDir() {
			files = append(files, src)
			continue
		}

		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, fmt.Errorf("csvio: read dir: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			// editor lock files and hidden files
			if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
				continue
			}
			if IsSupported(name) {
				files = append(files, filepath.Join(src, name))
			}
		}
	}
	return files, nil
}

// LoadRecords reads every export file reachable from sources and returns
// their data rows in file order.
func LoadRecords(sources []string, layouts layout.Set) ([]*model.RawRecord, error) {
	log := logging.For("csvio")

	files, err := ListSourceFiles(sources)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warn().Strs("sources", sources).Msg("No export files found")
	}

	var records []*model.RawRecord
	for _, f := range files {
		recs, err := LoadFile(f, layouts)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", f).Int("rows", len(recs)).Msg("Loaded export file")
		records = append(records, recs...)
	}
	return records, nil
}

// LoadFile reads one export file and decodes its data rows.
func LoadFile(path string, layouts layout.Set) ([]*model.RawRecord, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readWorkbook(path)
	case ".tsv":
		rows, err = readDelimited(path, '\t')
	default:
		rows, err = readDelimited(path, ',')
	}
	if err != nil {
		return nil, err
	}
	return DecodeRows(path, rows, layouts)
}

func readDelimited(path string, delim rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: parse %s: %w", path, err)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: open %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]string
	for _, sheet := range f.GetSheetList() {
		if skipSheets[strings.ToLower(sheet)] {
			continue
		}
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("csvio: read sheet %q of %s: %w", sheet, path, err)
		}
		rows = append(rows, sheetRows...)
	}
	return rows, nil
}

// DecodeRows maps raw spreadsheet rows onto RawRecords. Any row that resolves
// as a header starts a new block with its own column mapping; rows before the
// first header and rows with an empty first cell are skipped. A header row
// that does not resolve fails the whole file.
func DecodeRows(name string, rows [][]string, layouts layout.Set) ([]*model.RawRecord, error) {
	log := logging.For("csvio")

	var (
		mapping *layout.Mapping
		closest *layout.Error
		table   = [][]string{model.RawColumns}
		rowNums []int
	)
	index := make(map[string]int, len(model.RawColumns))
	for i, col := range model.RawColumns {
		index[col] = i
	}

	for n, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		m, lerr := layouts.Resolve(row)
		if lerr == nil {
			if mapping == nil || mapping.Layout != m.Layout {
				log.Debug().Str("file", name).Int("row", n+1).Str("layout", m.Layout).Msg("Header row")
			}
			mapping = m
			continue
		}
		if layouts.IsHeader(row) {
			log.Error().Str("file", name).Int("row", n+1).Strs("missing", lerr.Missing).Msg("Unmappable header row")
			return nil, &LayoutError{File: name, Row: n + 1, Closest: lerr}
		}
		if mapping == nil {
			if closest == nil || len(lerr.Missing) < len(closest.Missing) {
				closest = lerr
			}
			continue
		}

		out := make([]string, len(model.RawColumns))
		for i, col := range mapping.Columns {
			if col == "" || i >= len(row) {
				continue
			}
			out[index[col]] = strings.TrimSpace(row[i])
		}
		table = append(table, out)
		rowNums = append(rowNums, n+1)
	}

	if mapping == nil {
		if len(rows) == 0 {
			log.Warn().Str("file", name).Msg("Empty export file")
			return nil, nil
		}
		return nil, &LayoutError{File: name, Closest: closest}
	}

	var records []*model.RawRecord
	if len(rowNums) == 0 {
		return records, nil
	}
	if err := gocsv.UnmarshalCSV(&tableReader{rows: table}, &records); err != nil {
		return nil, fmt.Errorf("csvio: decode %s: %w", name, err)
	}
	for i, r := range records {
		r.SourceFile = name
		r.SourceRow = rowNums[i]
	}
	return records, nil
}

// tableReader feeds already-split rows to gocsv.
type tableReader struct {
	rows [][]string
	pos  int
}

func (t *tableReader) Read() ([]string, error) {
	if t.pos >= len(t.rows) {
		return nil, io.EOF
	}
	row := t.rows[t.pos]
	t.pos++
	return row, nil
}

func (t *tableReader) ReadAll() ([][]string, error) {
	rest := t.rows[t.pos:]
	t.pos = len(t.rows)
	return rest, nil
}
