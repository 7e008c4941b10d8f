package compiler

import (
	"sort"

	"github.com/rhyrak/fce-compiler/pkg/model"
)

// Renumbering maps a new course id to the id the course had before.
type Renumbering map[string]string

// DefaultRenumbering covers the SCS courses renumbered for Spring 2018. Only
// the prefix changed; content and instructors stayed the same.
//
//	15-214 Principles of Software Construction is now 17-214/17-514
//	15-413 Software Engineering Practicum is now 17-413
//	15-437/15-637 Web App Development is now 17-437/17-637
//	15-819 Special Topics: Program Analysis is now 17-819
func DefaultRenumbering() Renumbering {
	return Renumbering{
		"17214": "15214",
		"17514": "15214",
		"17413": "15413",
		"17437": "15437",
		"17637": "15637",
		"17819": "15819",
	}
}

// Apply returns a copy of summary where every new id without data of its own
// carries a copy of its old id's entry. The second value lists the ids added.
func (r Renumbering) Apply(summary model.Summary) (model.Summary, []string) {
	out := make(model.Summary, len(summary)+len(r))
	for id, c := range summary {
		out[id] = c
	}

	newIDs := make([]string, 0, len(r))
	for id := range r {
		newIDs = append(newIDs, id)
	}
	sort.Strings(newIDs)

	var added []string
	for _, newID := range newIDs {
		if _, exists := summary[newID]; exists {
			continue
		}
		old, ok := summary[r[newID]]
		if !ok {
			continue
		}
		c := *old
		out[newID] = &c
		added = append(added, newID)
	}
	return out, added
}
