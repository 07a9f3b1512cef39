package aggregate

import (
	"time"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// MonthRange is one calendar-month fetch window.
type MonthRange struct {
	// From is the first day of the month.
	From time.Time

	// To is the last day of the month.
	To time.Time

	// Label is the "YYYY-MM" bucket key the window covers.
	Label string
}

// MonthRanges returns the last n calendar months ending at the month of
// now, newest first, crossing year boundaries as it walks backward. The
// newest range spans the whole current month even when now is
// mid-month; the source simply has nothing yet for the remaining days.
func MonthRanges(now time.Time, n int) []MonthRange {
	ranges := make([]MonthRange, 0, n)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < n; i++ {
		ranges = append(ranges, MonthRange{
			From:  month,
			To:    month.AddDate(0, 1, -1),
			Label: month.Format(domain.MonthFormat),
		})
		month = month.AddDate(0, -1, 0)
	}
	return ranges
}
