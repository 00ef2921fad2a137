package notes

import (
	"fmt"
	"time"

	"github.com/avolkov/notekeep/internal/clock"
)

// FormatAge returns a relative-age label for a stored updated_at timestamp:
// "Today", "1 day ago", "<n> days ago" below a week, then whole weeks below
// a month (floor of days/7), then whole months (floor of days/30). The label
// is derived on every read and never stored. An unparseable timestamp yields
// an empty label.
func FormatAge(updatedAt string, now time.Time) string {
	t, err := clock.Parse(updatedAt)
	if err != nil {
		return ""
	}

	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks > 1 {
			return fmt.Sprintf("%d weeks ago", weeks)
		}
		return "1 week ago"
	default:
		months := days / 30
		if months > 1 {
			return fmt.Sprintf("%d months ago", months)
		}
		return "1 month ago"
	}
}
