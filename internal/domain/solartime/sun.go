package solartime

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SunEvents holds sunrise, sunset and apparent noon in civil time. All fields
// are zero when the sun does not both rise and set on that date.
type SunEvents struct {
	Sunrise time.Time
	Sunset  time.Time
	Noon    time.Time
}

// IsZero reports whether no events were found.
func (e SunEvents) IsZero() bool {
	return e.Sunrise.IsZero() && e.Sunset.IsZero()
}

// SunEventsOn computes the sun events for the civil date of day at a coordinate.
func SunEventsOn(day time.Time, latitude, longitude float64) SunEvents {
	local := day.In(Zone)
	rise, set := sunrise.SunriseSunset(latitude, longitude, local.Year(), local.Month(), local.Day())
	if rise.IsZero() || set.IsZero() {
		return SunEvents{}
	}
	return SunEvents{
		Sunrise: rise.In(Zone),
		Sunset:  set.In(Zone),
		Noon:    rise.Add(set.Sub(rise) / 2).In(Zone),
	}
}
