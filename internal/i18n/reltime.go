package i18n

import (
	"fmt"
	"time"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// RelativeTime says how long ago t was, e.g. "3 hours ago". A zero time
// gives "". Times in the future read as "just now".
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ago(time.Since(t))
}

func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return T("common.time.justNow", "just now")
	case d < time.Hour:
		return Tn("common.time.minutesAgo", "{{.Count}} minute ago", "{{.Count}} minutes ago", int(d/time.Minute))
	case d < day:
		return Tn("common.time.hoursAgo", "{{.Count}} hour ago", "{{.Count}} hours ago", int(d/time.Hour))
	case d < month:
		return Tn("common.time.daysAgo", "{{.Count}} day ago", "{{.Count}} days ago", int(d/day))
	case d < year:
		return Tn("common.time.monthsAgo", "{{.Count}} month ago", "{{.Count}} months ago", int(d/month))
	default:
		return Tn("common.time.yearsAgo", "{{.Count}} year ago", "{{.Count}} years ago", int(d/year))
	}
}

// Age is the compact, untranslated form used in tables: 40s, 12m, 3h,
// 5d, 2mo, 1y.
func Age(d time.Duration) string {
	d = max(d, 0)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < day:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d < month:
		return fmt.Sprintf("%dd", int(d/day))
	case d < year:
		return fmt.Sprintf("%dmo", int(d/month))
	default:
		return fmt.Sprintf("%dy", int(d/year))
	}
}
