package solartime

import (
	"math"
	"time"
)

// Conversion records the terms of one apparent solar time correction.
type Conversion struct {
	Civil     time.Time
	Apparent  time.Time
	Longitude float64
	JulianDay JulianDay
	// EquationOfTime and LongitudeCorrection are in minutes.
	EquationOfTime      float64
	LongitudeCorrection float64
}

// ShiftMinutes is the total correction applied to the civil instant.
func (c Conversion) ShiftMinutes() float64 {
	return c.LongitudeCorrection + c.EquationOfTime
}

// LongitudeCorrection returns the local mean time offset, in minutes, of a
// meridian relative to ReferenceLongitude.
func LongitudeCorrection(longitude float64) float64 {
	return (longitude - ReferenceLongitude) * minutesPerDegree
}

// Convert shifts civil by the longitude and equation-of-time terms.
func Convert(civil time.Time, longitude float64) (Conversion, error) {
	if err := ValidateLongitude(longitude); err != nil {
		return Conversion{}, err
	}
	civil = civil.In(Zone)
	jd := ToJulianDay(civil)
	conv := Conversion{
		Civil:               civil,
		Longitude:           longitude,
		JulianDay:           jd,
		EquationOfTime:      EquationOfTime(jd),
		LongitudeCorrection: LongitudeCorrection(longitude),
	}
	conv.Apparent = civil.Add(minutesToDuration(conv.ShiftMinutes()))
	return conv, nil
}

// ConvertString parses a civil timestamp and converts it.
func ConvertString(civilTimestamp string, longitude float64) (Conversion, error) {
	civil, err := ParseCivil(civilTimestamp)
	if err != nil {
		return Conversion{}, err
	}
	return Convert(civil, longitude)
}

// ToApparentSolarTime converts a Beijing-time wall clock value to apparent
// solar time at longitude, keeping the same layout.
func ToApparentSolarTime(civilTimestamp string, longitude float64) (string, error) {
	conv, err := ConvertString(civilTimestamp, longitude)
	if err != nil {
		return "", err
	}
	return FormatCivil(conv.Apparent), nil
}

func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(math.Round(minutes * float64(time.Minute)))
}
