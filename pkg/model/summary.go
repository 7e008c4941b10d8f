package model

import (
	"math"
	"sort"
	"strconv"
)

// Hours is a weekly workload figure, always emitted with one decimal place.
type Hours float64

// Rounded returns the value rounded to one decimal place.
func (h Hours) Rounded() float64 {
	return math.Round(float64(h)*10) / 10
}

func (h Hours) String() string {
	return strconv.FormatFloat(h.Rounded(), 'f', 1, 64)
}

func (h Hours) MarshalJSON() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h Hours) MarshalCSV() (string, error) {
	return h.String(), nil
}

// CourseSummary is the published entry of one course.
type CourseSummary struct {
	Name       string `json:"name"`
	Year       string `json:"year"`
	Instructor string `json:"instructor"`
	Hours      Hours  `json:"hrs"`
	Date       string `json:"date"`
}

// Summary maps canonical course ids to their latest evaluation.
type Summary map[string]*CourseSummary

// NewCourseSummary builds the published entry of a normalized record.
func NewCourseSummary(r *Record) *CourseSummary {
	return &CourseSummary{
		Name:       r.CourseName,
		Year:       r.Year,
		Instructor: r.Instructor,
		Hours:      Hours(r.Hours),
		Date:       r.Date,
	}
}

// IDs returns the course ids of the summary in ascending order.
func (s Summary) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type SummaryCSVRow struct {
	CourseID   string `csv:"course_id"`
	Name       string `csv:"name"`
	Year       string `csv:"year"`
	Instructor string `csv:"instructor"`
	Hours      Hours  `csv:"hrs"`
	Date       string `csv:"date"`
}

// Rows flattens the summary into CSV rows ordered by course id.
func (s Summary) Rows() []*SummaryCSVRow {
	rows := make([]*SummaryCSVRow, 0, len(s))
	for _, id := range s.IDs() {
		c := s[id]
		rows = append(rows, &SummaryCSVRow{
			CourseID:   id,
			Name:       c.Name,
			Year:       c.Year,
			Instructor: c.Instructor,
			Hours:      c.Hours,
			Date:       c.Date,
		})
	}
	return rows
}
