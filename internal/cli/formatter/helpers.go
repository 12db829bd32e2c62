package formatter

import (
	"strconv"
	"time"
)

// RelativeDate renders a date relative to now in short Spanish form: "Hoy",
// "Ayer", "hace 5d", "en 3d", falling back to dd-mm-yyyy beyond 30 days.
func RelativeDate(t, now time.Time) string {
	day := func(ts time.Time) time.Time {
		y, m, d := ts.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	days := int(day(t).Sub(day(now)).Hours() / 24)

	switch {
	case days == 0:
		return "Hoy"
	case days == -1:
		return "Ayer"
	case days == 1:
		return "Mañana"
	case days < 0 && days >= -30:
		return "hace " + strconv.Itoa(-days) + "d"
	case days > 0 && days <= 30:
		return "en " + strconv.Itoa(days) + "d"
	default:
		return t.Format("02-01-2006")
	}
}
