package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rhyrak/fce-compiler/pkg/model"
)

// Mapping assigns a canonical column, or "" when ignored, to each source column.
type Mapping struct {
	Layout  string
	Columns []string
}

// Error reports the canonical columns a header could not provide.
type Error struct {
	Layout  string
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("layout %q: missing required column(s): %s", e.Layout, strings.Join(e.Missing, ", "))
}

// Resolve maps a header row with the first layout that provides every required
// column. Otherwise it returns the error of the layout missing the fewest.
func (s Set) Resolve(header []string) (*Mapping, *Error) {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = CleanColumnName(h)
	}

	var closest *Error
	for _, l := range s {
		m, missing := l.resolve(cleaned)
		if len(missing) == 0 {
			return m, nil
		}
		if closest == nil || len(missing) < len(closest.Missing) {
			closest = &Error{Layout: l.Name, Missing: missing}
		}
	}
	return nil, closest
}

// IsHeader reports whether the row looks like a header: its first cell names
// the year column of some layout. Such a row must resolve or the block under
// it cannot be read.
func (s Set) IsHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := CleanColumnName(row[0])
	if first == "" {
		return false
	}
	for _, l := range s {
		if slices.Contains(l.Columns[model.ColumnYear], first) {
			return true
		}
	}
	return false
}

func (l Layout) resolve(cleaned []string) (*Mapping, []string) {
	byAlias := make(map[string]string)
	for col, aliases := range l.Columns {
		for _, a := range aliases {
			byAlias[a] = col
		}
	}

	m := &Mapping{Layout: l.Name, Columns: make([]string, len(cleaned))}
	found := make(map[string]bool)
	hours := 0
	for i, name := range cleaned {
		col, ok := byAlias[name]
		if !ok || name == "" {
			continue
		}
		if col == model.ColumnHours {
			// Some exports repeat the hours question; each copy gets its own slot.
			if hours >= len(model.HoursColumns) {
				continue
			}
			col = model.HoursColumns[hours]
			hours++
		} else if found[col] {
			continue
		}
		m.Columns[i] = col
		found[col] = true
	}
	if hours > 0 {
		found[model.ColumnHours] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !found[col] {
			missing = append(missing, col)
		}
	}
	return m, missing
}
