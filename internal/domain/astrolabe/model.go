package astrolabe

import (
	"context"
	"encoding/json"

	"github.com/yanqian/iztro-mcp/internal/domain/birthtime"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
)

// Gender is the normalized gender passed to the chart engine.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Calendar selects how the birthday is interpreted.
type Calendar string

const (
	CalendarSolar Calendar = "solar"
	CalendarLunar Calendar = "lunar"
)

// SupportedLanguages lists the chart output languages.
var SupportedLanguages = []string{"zh-CN", "zh-TW", "en-US", "ja-JP", "ko-KR", "vi-VN"}

// Config carries astrolabe defaults.
type Config struct {
	DefaultLanguage string
}

// Request is the raw chart request as received from a tool or REST call.
type Request struct {
	Birthday     string
	BirthTime    solartime.Slot
	Gender       string
	CalendarType string
	IsLeapMonth  bool
	Language     string
	Location     string
}

// ChartRequest is what the chart engine receives. TimeIndex uses the
// twelve-slot convention (0 = rat hour ... 11 = pig hour).
type ChartRequest struct {
	Date        string   `json:"date"`
	TimeIndex   int      `json:"timeIndex"`
	Gender      Gender   `json:"gender"`
	Calendar    Calendar `json:"calendar"`
	IsLeapMonth bool     `json:"isLeapMonth"`
	FixLeap     bool     `json:"fixLeap"`
	Language    string   `json:"language"`
}

// ChartClient renders a chart. The payload is returned untouched.
type ChartClient interface {
	Chart(ctx context.Context, req ChartRequest) (json.RawMessage, error)
}

// Adjuster applies the apparent solar time correction.
type Adjuster interface {
	Adjust(ctx context.Context, req birthtime.Request) (birthtime.Result, error)
}

// InputParameters echoes the normalized caller input.
type InputParameters struct {
	OriginalBirthday  string   `json:"original_birthday"`
	OriginalBirthTime int      `json:"original_birth_time"`
	Gender            Gender   `json:"gender"`
	CalendarType      Calendar `json:"calendar_type"`
	IsLeapMonth       bool     `json:"is_leap_month"`
	Language          string   `json:"language"`
	Location          string   `json:"location,omitempty"`
}

// Response is the assembled chart result.
type Response struct {
	Astrolabe          json.RawMessage   `json:"astrolabe"`
	InputParameters    InputParameters   `json:"input_parameters"`
	ChartParameters    ChartRequest      `json:"chart_parameters"`
	LocationProcessing *birthtime.Result `json:"location_processing,omitempty"`
}
