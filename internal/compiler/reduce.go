package compiler

import (
	"slices"
	"strings"

	"github.com/rhyrak/fce-compiler/pkg/model"
)

// LatestByCourse keeps the most recent record of every course. Dates are
// zero-padded so string order is chronological; among equal dates the record
// seen first in the input wins.
func LatestByCourse(records []*model.Record) map[string]*model.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *model.Record) int {
		return strings.Compare(b.Date, a.Date)
	})

	latest := make(map[string]*model.Record)
	for _, r := range sorted {
		if _, seen := latest[r.CourseID]; !seen {
			latest[r.CourseID] = r
		}
	}
	return latest
}

// Summarize turns the per-course records into published entries.
func Summarize(latest map[string]*model.Record) model.Summary {
	summary := make(model.Summary, len(latest))
	for id, r := range latest {
		summary[id] = model.NewCourseSummary(r)
	}
	return summary
}
