package report

import (
	"fmt"
	"time"
)

// Humanize renders the age of pub relative to now: minutes below an hour,
// hours below a day, days below a week, the ISO date otherwise.
func Humanize(pub, now time.Time, lang string) string {
	l := labelsFor(lang)
	diff := now.Sub(pub)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf(l.minutesAgo, int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf(l.hoursAgo, int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf(l.daysAgo, int(diff/(24*time.Hour)))
	default:
		return pub.UTC().Format("2006-01-02")
	}
}
