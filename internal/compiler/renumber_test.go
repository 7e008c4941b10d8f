package compiler

import (
	"testing"

	"github.com/rhyrak/fce-compiler/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenumbering_Apply(t *testing.T) {
	summary := model.Summary{
		"15214": {Year: "2016", Instructor: "Smith", Hours: 10, Date: "2016-09"},
		"15413": {Year: "2016", Instructor: "Root", Hours: 9, Date: "2016-09"},
		"17413": {Year: "2018", Instructor: "Current", Hours: 7, Date: "2018-01"},
	}

	out, added := DefaultRenumbering().Apply(summary)
	assert.Equal(t, []string{"17214", "17514"}, added)
	require.Len(t, out, 5)
	assert.Equal(t, model.Hours(10), out["17214"].Hours)
	assert.Equal(t, model.Hours(10), out["17514"].Hours)
	assert.Equal(t, "Current", out["17413"].Instructor)

	// copies are independent of the old entry
	out["17214"].Instructor = "changed"
	assert.Equal(t, "Smith", out["15214"].Instructor)
	assert.Len(t, summary, 3)
}

func TestRenumbering_NothingToCopy(t *testing.T) {
	out, added := DefaultRenumbering().Apply(model.Summary{})
	assert.Empty(t, added)
	assert.Empty(t, out)
}
