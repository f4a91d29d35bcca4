package quota

import "time"

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// bucket keys for the day and month containing a moment
type PeriodKeys struct {
	Day   string `json:"day"`
	Month string `json:"month"`
}

// derives the UTC day ("YYYY-MM-DD") and month ("YYYY-MM") keys for t
func KeysAt(t time.Time) PeriodKeys {
	u := t.UTC()

	return PeriodKeys{
		Day:   u.Format(dayKeyLayout),
		Month: u.Format(monthKeyLayout),
	}
}

// returns the key of the bucket for the given period
func (k PeriodKeys) For(p Period) string {
	if p == PeriodMonth {
		return k.Month
	}

	return k.Day
}
