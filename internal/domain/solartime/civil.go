package solartime

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

const (
	// Layout is the wall-clock format used for civil and apparent timestamps.
	Layout = "2006-01-02 15:04:05"
	// DateLayout is the calendar portion of Layout.
	DateLayout = "2006-01-02"
	// ReferenceLongitude is the meridian of the civil zone (Beijing time).
	ReferenceLongitude = 120.0

	minutesPerDegree = 4.0
)

// Zone is the fixed civil zone every timestamp is interpreted in (UTC+8).
var Zone = time.FixedZone("Asia/Shanghai", 8*60*60)

// ParseCivil parses a YYYY-MM-DD HH:mm:ss wall-clock value in Zone.
func ParseCivil(value string) (time.Time, error) {
	ts, err := time.ParseInLocation(Layout, strings.TrimSpace(value), Zone)
	if err != nil {
		return time.Time{}, apperrors.Wrap("invalid_input", "time must be formatted as YYYY-MM-DD HH:mm:ss", err)
	}
	return ts, nil
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in Zone.
func ParseDate(value string) (time.Time, error) {
	ts, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), Zone)
	if err != nil {
		return time.Time{}, apperrors.Wrap("invalid_input", "date must be formatted as YYYY-MM-DD", err)
	}
	return ts, nil
}

// FormatCivil renders ts as local wall-clock fields in Zone.
func FormatCivil(ts time.Time) string {
	return ts.In(Zone).Format(Layout)
}

// ValidateLongitude rejects NaN and values outside [-180, 180].
func ValidateLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return apperrors.Wrap("invalid_input", "longitude must be within [-180, 180]", nil)
	}
	return nil
}

// ValidateLatitude rejects NaN and values outside [-90, 90].
func ValidateLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return apperrors.Wrap("invalid_input", "latitude must be within [-90, 90]", nil)
	}
	return nil
}
