package model

// Canonical column names of a decoded export row. Layout tables map the
// cleaned source headers onto these.
const (
	ColumnYear       = "year"
	ColumnSemester   = "semester"
	ColumnCourseID   = "course_id"
	ColumnSection    = "section"
	ColumnCourseName = "course_name"
	ColumnInstructor = "instructor"
	ColumnDepartment = "dept"
	ColumnHours      = "hrs"
	ColumnHours2     = "hrs_2"
	ColumnHours3     = "hrs_3"
	ColumnResponses  = "responses"
)

// RawColumns lists the canonical columns in the order RawRecord declares them.
var RawColumns = []string{
	ColumnYear,
	ColumnSemester,
	ColumnCourseID,
	ColumnSection,
	ColumnCourseName,
	ColumnInstructor,
	ColumnDepartment,
	ColumnHours,
	ColumnHours2,
	ColumnHours3,
	ColumnResponses,
}

// HoursColumns are the weekly-hours slots, in the order repeated hours
// columns of a single export are assigned to them.
var HoursColumns = []string{ColumnHours, ColumnHours2, ColumnHours3}

// RawRecord is one data row of an FCE export after its columns have been
// renamed to the canonical set. All values are kept as trimmed strings.
type RawRecord struct {
	Year       string `csv:"year"`
	Semester   string `csv:"semester"`
	CourseID   string `csv:"course_id"`
	Section    string `csv:"section"`
	CourseName string `csv:"course_name"`
	Instructor string `csv:"instructor"`
	Department string `csv:"dept"`
	Hours      string `csv:"hrs"`
	Hours2     string `csv:"hrs_2"`
	Hours3     string `csv:"hrs_3"`
	Responses  string `csv:"responses"`
	SourceFile string `csv:"-"`
	SourceRow  int    `csv:"-"`
}

// HoursFields returns every weekly-hours value of the row, empty ones included.
func (r *RawRecord) HoursFields() []string {
	return []string{r.Hours, r.Hours2, r.Hours3}
}

// Record is a normalized evaluation row.
type Record struct {
	CourseID   string
	CourseName string
	Instructor string
	Department string
	Year       string
	Semester   Semester
	Section    string
	Hours      float64
	Responses  int
	Date       string
	Order      int // position in the loaded input, used for tie-breaking
}
