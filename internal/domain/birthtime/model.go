package birthtime

import (
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
)

// Request captures the birth data to adjust.
type Request struct {
	BirthDate string
	Slot      solartime.Slot
	Place     string
}

// Result is the outcome of one adjustment. When Applied is false the adjusted
// fields equal the originals and Failure explains why, if anything failed.
type Result struct {
	Applied                    bool            `json:"applied"`
	OriginalDate               string          `json:"original_birthday"`
	OriginalSlot               solartime.Slot  `json:"original_birth_time_slot"`
	AdjustedDate               string          `json:"adjusted_birthday"`
	AdjustedSlot               solartime.Slot  `json:"adjusted_birth_time_slot"`
	Place                      string          `json:"location,omitempty"`
	Coordinate                 *geo.Coordinate `json:"geocode_info,omitempty"`
	CivilTime                  string          `json:"original_beijing_time,omitempty"`
	ApparentSolarTime          string          `json:"apparent_solar_time,omitempty"`
	EquationOfTimeMinutes      float64         `json:"equation_of_time_minutes,omitempty"`
	LongitudeCorrectionMinutes float64         `json:"longitude_correction_minutes,omitempty"`
	Failure                    string          `json:"failure,omitempty"`
}
