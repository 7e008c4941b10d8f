package compiler

import (
	"testing"

	"github.com/rhyrak/fce-compiler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(year, semester, id, section, responses string, hours ...string) *model.RawRecord {
	r := &model.RawRecord{Year: year, Semester: semester, CourseID: id, Section: section, Instructor: "Staff", Responses: responses}
	for i, h := range hours {
		switch i {
		case 0:
			r.Hours = h
		case 1:
			r.Hours2 = h
		case 2:
			r.Hours3 = h
		}
	}
	return r
}

func TestCompile_RenumberedCourse(t *testing.T) {
	summary, stats, err := Compile([]*model.RawRecord{
		raw("2016", "Fall", "15-214", "A", "40", "10.0"),
	}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"15214", "17214", "17514"}, summary.IDs())
	for _, id := range summary.IDs() {
		assert.Equal(t, "10.0", summary[id].Hours.String())
		assert.Equal(t, "2016-09", summary[id].Date)
	}
	assert.Equal(t, []string{"17214", "17514"}, stats.Renumbered)
}

func TestCompile_LatestWins(t *testing.T) {
	older := raw("2014", "Fall", "02-201", "A", "30", "7")
	older.Instructor = "Old"
	newer := raw("2015", "Spring", "02-201", "A", "30", "9")
	newer.Instructor = "New"

	summary, _, err := Compile([]*model.RawRecord{older, newer}, DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, summary, "02201")
	assert.Equal(t, "New", summary["02201"].Instructor)
	assert.Equal(t, "2015-01", summary["02201"].Date)
	assert.Equal(t, model.Hours(9), summary["02201"].Hours)
}

func TestCompile_Exclusions(t *testing.T) {
	rows := []*model.RawRecord{
		raw("2016", "Fall", "10701", "A", "40", "", "8.5", "6.0"),
		raw("2017", "Spring", "10701", "Q", "40", "20"),
		raw("2017", "Spring", "10701", "W", "40", "20"),
		raw("2017", "Spring", "10701", "A", "5", "20"),
		raw("2017", "Summer", "10701", "A", "40", "20"),
		raw("2017", "Spring", "10701", "A", "40", ""),
		raw("2017", "Spring", "", "A", "40", "20"),
	}

	summary, stats, err := Compile(rows, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, model.Hours(8.5), summary["10701"].Hours)
	assert.Equal(t, "2016-09", summary["10701"].Date)

	assert.Equal(t, 7, stats.Rows)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, map[DropReason]int{
		DropExcludedSection:  2,
		DropFewResponses:     1,
		DropExcludedSemester: 1,
		DropMissingHours:     1,
		DropMissingCourseID:  1,
	}, stats.Dropped)
}

func TestCompile_CutoffYear(t *testing.T) {
	opts := DefaultOptions()
	opts.Filter.CutoffYear = 2015

	summary, _, err := Compile([]*model.RawRecord{
		raw("2014", "Fall", "15122", "A", "40", "12"),
		raw("2015", "Fall", "15150", "A", "40", "11"),
	}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"15150"}, summary.IDs())
}

func TestCompile_Deterministic(t *testing.T) {
	rows := []*model.RawRecord{
		raw("2015", "Fall", "15-213", "A", "100", "12"),
		raw("2015", "Fall", "15-213", "B", "90", "13"),
		raw("2016", "Spring", "15-210", "A", "80", "11"),
		raw("2016", "Fall", "15-214", "A", "40", "10"),
	}
	first, _, err := Compile(rows, DefaultOptions())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := Compile(rows, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// equal dates: the first row in input order wins
	assert.Equal(t, model.Hours(12), first["15213"].Hours)
}

func TestCompile_Empty(t *testing.T) {
	summary, stats, err := Compile(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.Zero(t, stats.Courses)
}
