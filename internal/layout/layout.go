package layout

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rhyrak/fce-compiler/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var defaultLayouts []byte

// RequiredColumns must all be resolved for a header row to be accepted.
var RequiredColumns = []string{
	model.ColumnYear,
	model.ColumnSemester,
	model.ColumnCourseID,
	model.ColumnSection,
	model.ColumnInstructor,
	model.ColumnHours,
	model.ColumnResponses,
}

var optionalColumns = []string{model.ColumnCourseName, model.ColumnDepartment}

// Layout maps canonical columns to the header aliases one export version used.
type Layout struct {
	Name    string              `yaml:"name"`
	Columns map[string][]string `yaml:"columns"`
}

// Set is an ordered list of layouts. The first layout resolving a header wins.
type Set []Layout

type file struct {
	Layouts Set `yaml:"layouts"`
}

// Default returns the built-in layouts.
func Default() Set {
	set, err := Parse(defaultLayouts)
	if err != nil {
		panic(fmt.Sprintf("layout: embedded layouts: %v", err))
	}
	return set
}

// Load reads a layouts file.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document with a top-level layouts list.
func Parse(data []byte) (Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("layout: parse yaml: %w", err)
	}
	if err := f.Layouts.Validate(); err != nil {
		return nil, err
	}
	return f.Layouts.normalized(), nil
}

// Validate rejects empty sets, unknown canonical columns and aliases claimed
// by more than one column of the same layout.
func (s Set) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("layout: no layouts defined")
	}
	known := append(slices.Clone(RequiredColumns), optionalColumns...)
	for i, l := range s {
		if l.Name == "" {
			return fmt.Errorf("layout: layouts[%d]: name is required", i)
		}
		owner := make(map[string]string)
		for col, aliases := range l.Columns {
			if !slices.Contains(known, col) {
				return fmt.Errorf("layout: %q: unknown column %q", l.Name, col)
			}
			for _, a := range aliases {
				a = CleanColumnName(a)
				if prev, dup := owner[a]; dup && prev != col {
					return fmt.Errorf("layout: %q: alias %q used by both %q and %q", l.Name, a, prev, col)
				}
				owner[a] = col
			}
		}
	}
	return nil
}

func (s Set) normalized() Set {
	out := make(Set, len(s))
	for i, l := range s {
		cols := make(map[string][]string, len(l.Columns))
		for col, aliases := range l.Columns {
			for _, a := range aliases {
				cols[col] = append(cols[col], CleanColumnName(a))
			}
		}
		out[i] = Layout{Name: l.Name, Columns: cols}
	}
	return out
}

// CleanColumnName reduces an export header to its comparable form:
// "Q5: Hrs Per Week 5" becomes "hrs per week".
func CleanColumnName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(strings.Trim(name, " 0123456789\t\n\r"))
}
