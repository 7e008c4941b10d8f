package compiler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/rhyrak/fce-compiler/pkg/model"
)

// Dates compare as strings, so years must all have the same width.
var yearPattern = regexp.MustCompile(`^[0-9]{4}$`)

// CourseIDLength is the number of trailing digits kept as the canonical id.
const CourseIDLength = 5

// CanonicalCourseID keeps the last five digits of a raw course id:
// "15-214", "F16-15-214" and "15214" all become "15214".
func CanonicalCourseID(raw string) string {
	var digits []rune
	for _, c := range raw {
		if unicode.IsDigit(c) && c <= unicode.MaxASCII {
			digits = append(digits, c)
		}
	}
	if len(digits) > CourseIDLength {
		digits = digits[len(digits)-CourseIDLength:]
	}
	return string(digits)
}

// ParseHours returns the largest parseable value among fields. Empty and
// unparseable fields are absent rather than zero.
func ParseHours(fields ...string) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

// SemesterDate builds the "YYYY-0M" date of a semester. The month is always
// prefixed with a single zero, which is only right for single-digit month
// codes; consumers of the published file rely on that exact shape.
func SemesterDate(year string, semester model.Semester) string {
	return fmt.Sprintf("%s-0%d", strings.TrimSpace(year), semester.MonthCode())
}

func parseResponses(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// spreadsheet exports sometimes store counts as "12.0"
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(v), true
}

// Normalize converts a raw row into a Record. Rows missing a value every
// record needs are rejected with the reason.
func Normalize(raw *model.RawRecord, order int) (*model.Record, DropReason) {
	id := CanonicalCourseID(raw.CourseID)
	if id == "" {
		return nil, DropMissingCourseID
	}
	hours, ok := ParseHours(raw.HoursFields()...)
	if !ok {
		return nil, DropMissingHours
	}
	// rounds to 0.0 in the output
	if math.Round(hours*10) <= 0 {
		return nil, DropInvalidHours
	}
	responses, ok := parseResponses(raw.Responses)
	if !ok {
		return nil, DropInvalidResponses
	}
	year := strings.TrimSpace(raw.Year)
	if !yearPattern.MatchString(year) {
		return nil, DropInvalidYear
	}

	semester := model.ParseSemester(raw.Semester)
	return &model.Record{
		CourseID:   id,
		CourseName: strings.TrimSpace(raw.CourseName),
		Instructor: strings.TrimSpace(raw.Instructor),
		Department: strings.TrimSpace(raw.Department),
		Year:       year,
		Semester:   semester,
		Section:    strings.TrimSpace(raw.Section),
		Hours:      hours,
		Responses:  responses,
		Date:       SemesterDate(year, semester),
		Order:      order,
	}, DropNone
}
