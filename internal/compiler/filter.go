package compiler

import (
	"slices"
	"strconv"

	"github.com/rhyrak/fce-compiler/pkg/model"
)

// DropReason says why a row was left out of the summary. Drops are data
// quality outcomes, not errors.
type DropReason string

const (
	DropNone             DropReason = ""
	DropMissingCourseID  DropReason = "missing_course_id"
	DropMissingHours     DropReason = "missing_hours"
	DropInvalidHours     DropReason = "invalid_hours"
	DropInvalidResponses DropReason = "invalid_responses"
	DropInvalidYear      DropReason = "invalid_year"
	DropExcludedSection  DropReason = "excluded_section"
	DropFewResponses     DropReason = "few_responses"
	DropExcludedSemester DropReason = "excluded_semester"
	DropBeforeCutoff     DropReason = "before_cutoff"
)

const DefaultMinResponses = 5

// Filter holds the row exclusion policy.
type Filter struct {
	// Rows need strictly more responses than this.
	MinResponses int
	// Special sections, e.g. "Q" and "W", whose evaluations are unrepresentative.
	ExcludedSections []string
	// Summer courses are usually more intensive and thus not representative.
	ExcludedSemesters []model.Semester
	// Rows from earlier years are dropped; 0 disables the cutoff.
	CutoffYear int
}

func DefaultFilter() Filter {
	return Filter{
		MinResponses:      DefaultMinResponses,
		ExcludedSections:  []string{"Q", "W"},
		ExcludedSemesters: []model.Semester{model.Summer},
	}
}

// Check returns DropNone for records the policy keeps.
func (f Filter) Check(r *model.Record) DropReason {
	if slices.Contains(f.ExcludedSections, r.Section) {
		return DropExcludedSection
	}
	if r.Responses <= f.MinResponses {
		return DropFewResponses
	}
	if slices.Contains(f.ExcludedSemesters, r.Semester) {
		return DropExcludedSemester
	}
	if f.CutoffYear > 0 {
		year, err := strconv.Atoi(r.Year)
		if err != nil || year < f.CutoffYear {
			return DropBeforeCutoff
		}
	}
	return DropNone
}
