package compiler

import (
	"errors"

	"github.com/rhyrak/fce-compiler/internal/logging"
	"github.com/rhyrak/fce-compiler/pkg/model"
)

// ErrInvalidSummary is returned when a compiled summary fails Validate.
var ErrInvalidSummary = errors.New("compiled summary failed validation")

// Options configure a compile run.
type Options struct {
	Filter      Filter
	Renumbering Renumbering
}

func DefaultOptions() Options {
	return Options{
		Filter:      DefaultFilter(),
		Renumbering: DefaultRenumbering(),
	}
}

// Stats describes what a compile run did with its input.
type Stats struct {
	Rows       int
	Kept       int
	Dropped    map[DropReason]int
	Courses    int
	Renumbered []string
}

// Compile turns raw export rows into the published summary: normalize, filter,
// keep the latest record per course, then backfill renumbered courses.
func Compile(raws []*model.RawRecord, opts Options) (model.Summary, Stats, error) {
	log := logging.For("compiler")
	stats := Stats{Rows: len(raws), Dropped: make(map[DropReason]int)}

	kept := make([]*model.Record, 0, len(raws))
	for i, raw := range raws {
		rec, reason := Normalize(raw, i)
		if reason == DropNone {
			reason = opts.Filter.Check(rec)
		}
		if reason != DropNone {
			stats.Dropped[reason]++
			log.Trace().
				Str("file", raw.SourceFile).
				Int("row", raw.SourceRow).
				Str("reason", string(reason)).
				Msg("Row dropped")
			continue
		}
		kept = append(kept, rec)
	}
	stats.Kept = len(kept)

	summary := Summarize(LatestByCourse(kept))
	summary, stats.Renumbered = opts.Renumbering.Apply(summary)
	stats.Courses = len(summary)

	if valid, report := Validate(summary); !valid {
		log.Error().Msg(report)
		return nil, stats, ErrInvalidSummary
	}
	return summary, stats, nil
}
