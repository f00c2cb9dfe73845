package solartime

import (
	"fmt"
	"math"
)

// Report is the presentation form of a conversion.
type Report struct {
	BeijingTime                string   `json:"beijing_time"`
	Longitude                  float64  `json:"longitude"`
	Latitude                   *float64 `json:"latitude,omitempty"`
	ApparentSolarTime          string   `json:"apparent_solar_time"`
	EquationOfTimeMinutes      float64  `json:"equation_of_time_minutes"`
	LongitudeCorrectionMinutes float64  `json:"longitude_correction_minutes"`
	Sunrise                    string   `json:"sunrise,omitempty"`
	Sunset                     string   `json:"sunset,omitempty"`
	SolarNoon                  string   `json:"solar_noon,omitempty"`
	Message                    string   `json:"message"`
}

// NewReport converts beijingTime at longitude. Sun events are included when a
// latitude is given and the sun rises and sets on that date.
func NewReport(beijingTime string, longitude float64, latitude *float64) (Report, error) {
	if latitude != nil {
		if err := ValidateLatitude(*latitude); err != nil {
			return Report{}, err
		}
	}
	conv, err := ConvertString(beijingTime, longitude)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		BeijingTime:                FormatCivil(conv.Civil),
		Longitude:                  longitude,
		Latitude:                   latitude,
		ApparentSolarTime:          FormatCivil(conv.Apparent),
		EquationOfTimeMinutes:      round4(conv.EquationOfTime),
		LongitudeCorrectionMinutes: round4(conv.LongitudeCorrection),
	}
	rep.Message = fmt.Sprintf("北京时间 %s 在经度 %g° 处的真太阳时为：%s", rep.BeijingTime, longitude, rep.ApparentSolarTime)

	if latitude != nil {
		if events := SunEventsOn(conv.Civil, *latitude, longitude); !events.IsZero() {
			rep.Sunrise = FormatCivil(events.Sunrise)
			rep.Sunset = FormatCivil(events.Sunset)
			rep.SolarNoon = FormatCivil(events.Noon)
		}
	}
	return rep, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
