package reconcile

import (
	"fmt"
	"io"
	"strconv"
)

// WriteReport prints the display block for one file: a header with the
// reference duration, one line per reported track, then a blank line.
func WriteReport(w io.Writer, report FileReport) error {
	if _, err := fmt.Fprintf(w, "%s | Video Duration: %s\n", report.Name, FormatSeconds(report.Reference)); err != nil {
		return err
	}
	for _, plan := range report.Reported() {
		if _, err := fmt.Fprintf(w, "Track %d (%s): Duration: %s Difference: %s\n",
			plan.Track.ID,
			languageOrUnd(plan.Track.Language),
			FormatSeconds(plan.Track.Duration),
			FormatSeconds(plan.Difference),
		); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// FormatSeconds renders a duration in the shortest form that round-trips.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
