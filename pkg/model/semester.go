package model

import "strings"

type Semester string

const (
	Fall   Semester = "Fall"
	Spring Semester = "Spring"
	Summer Semester = "Summer"
)

// ParseSemester maps an export value onto a known semester. Unknown or empty
// values are returned as-is so that they still compare unequal to every
// known semester.
func ParseSemester(s string) Semester {
	s = strings.TrimSpace(s)
	for _, known := range []Semester{Fall, Spring, Summer} {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return Semester(s)
}

// MonthCode is the month a semester starts in; 0 for unrecognized semesters.
func (s Semester) MonthCode() int {
	switch s {
	case Fall:
		return 9
	case Spring:
		return 1
	case Summer:
		return 6
	}
	return 0
}
