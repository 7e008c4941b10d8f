package compiler

import (
	"fmt"
	"math"
	"regexp"

	"github.com/rhyrak/fce-compiler/pkg/model"
)

var (
	courseIDPattern = regexp.MustCompile(`^[0-9]{1,5}$`)
	datePattern     = regexp.MustCompile(`^[0-9]{4}-0[0-9]$`)
)

// Validate checks the summary about to be published.
// Returns false and a report for invalid summaries.
func Validate(summary model.Summary) (bool, string) {
	var message string
	var badIDs, badHours, badDates []string

	for _, id := range summary.IDs() {
		c := summary[id]
		if !courseIDPattern.MatchString(id) {
			badIDs = append(badIDs, id)
		}
		h := c.Hours.Rounded()
		if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
			badHours = append(badHours, id)
		}
		if !datePattern.MatchString(c.Date) {
			badDates = append(badDates, id)
		}
	}

	valid := len(badIDs) == 0 && len(badHours) == 0 && len(badDates) == 0
	message += checkLine("Course id check", badIDs)
	message += checkLine("Hours check", badHours)
	message += checkLine("Date check", badDates)
	return valid, message
}

func checkLine(name string, failed []string) string {
	if len(failed) == 0 {
		return "[  OK]: " + name + ".\n"
	}
	return fmt.Sprintf("[FAIL]: %s: %v\n", name, failed)
}
