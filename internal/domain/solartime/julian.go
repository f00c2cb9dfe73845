package solartime

import "time"

const (
	// J2000 is the Julian Day of the J2000.0 epoch.
	J2000 JulianDay = 2451545.0

	daysPerJulianCentury = 36525.0
)

// JulianDay is a continuous day count; it carries no zone.
type JulianDay float64

// Centuries returns Julian centuries elapsed since J2000.0.
func (jd JulianDay) Centuries() float64 {
	return float64(jd-J2000) / daysPerJulianCentury
}

// ToJulianDay converts the civil wall-clock fields of ts (read in Zone) to a
// Julian Day. January and February count as months 13 and 14 of the prior year.
func ToJulianDay(ts time.Time) JulianDay {
	local := ts.In(Zone)
	year, month, day := local.Date()
	hour, minute, second := local.Clock()

	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3

	jdn := day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	return JulianDay(float64(jdn) +
		float64(hour-12)/24 +
		float64(minute)/1440 +
		float64(second)/86400)
}

// JulianDayOf parses a civil timestamp string and converts it.
func JulianDayOf(civilTimestamp string) (JulianDay, error) {
	ts, err := ParseCivil(civilTimestamp)
	if err != nil {
		return 0, err
	}
	return ToJulianDay(ts), nil
}
