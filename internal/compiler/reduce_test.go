package compiler

import (
	"testing"

	"github.com/rhyrak/fce-compiler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestByCourse(t *testing.T) {
	records := []*model.Record{
		{CourseID: "02201", Date: "2014-09", Instructor: "Old", Order: 0},
		{CourseID: "02201", Date: "2015-01", Instructor: "New", Order: 1},
		{CourseID: "10701", Date: "2015-09", Instructor: "First", Order: 2},
		{CourseID: "10701", Date: "2015-09", Instructor: "Second", Order: 3},
		{CourseID: "10701", Date: "2015-01", Instructor: "Earlier", Order: 4},
	}

	latest := LatestByCourse(records)
	require.Len(t, latest, 2)
	assert.Equal(t, "New", latest["02201"].Instructor)
	assert.Equal(t, "First", latest["10701"].Instructor)

	// input order is left alone
	assert.Equal(t, "Old", records[0].Instructor)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(map[string]*model.Record{
		"02201": {CourseID: "02201", CourseName: "Programming for Scientists", Year: "2015", Instructor: "Kingsford", Hours: 8.5, Date: "2015-01"},
	})
	assert.Equal(t, model.Summary{
		"02201": {Name: "Programming for Scientists", Year: "2015", Instructor: "Kingsford", Hours: 8.5, Date: "2015-01"},
	}, summary)
}
