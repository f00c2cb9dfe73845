package astrolabe

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/iztro-mcp/internal/domain/birthtime"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

const lunarSkipReason = "apparent solar time correction only applies to solar calendar births"

// Service generates natal charts.
type Service interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type service struct {
	cfg      Config
	adjuster Adjuster
	chart    ChartClient
	logger   *slog.Logger
}

// NewService wires up the astrolabe domain.
func NewService(cfg Config, adjuster Adjuster, chart ChartClient, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		adjuster: adjuster,
		chart:    chart,
		logger:   logger.With("component", "astrolabe.service"),
	}
}

func (s *service) Generate(ctx context.Context, req Request) (Response, error) {
	gender, err := normalizeGender(req.Gender)
	if err != nil {
		return Response{}, err
	}
	calendar, err := normalizeCalendar(req.CalendarType)
	if err != nil {
		return Response{}, err
	}
	language, err := normalizeLanguage(req.Language, s.cfg.DefaultLanguage)
	if err != nil {
		return Response{}, err
	}
	birthday, err := normalizeBirthday(req.Birthday, calendar)
	if err != nil {
		return Response{}, err
	}
	if !req.BirthTime.Valid() {
		return Response{}, apperrors.Wrap("invalid_input", "birthTime must be within 0-12 (0 early rat hour, 12 late rat hour)", nil)
	}
	if calendar == CalendarLunar && req.BirthTime == solartime.LateRat {
		return Response{}, apperrors.Wrap("invalid_input", "lunar births use birthTime 0-11", nil)
	}

	location := strings.TrimSpace(req.Location)
	date, slot := birthday, req.BirthTime
	var processing *birthtime.Result

	switch {
	case location == "":
	case calendar == CalendarLunar:
		s.logger.Info("skipping apparent solar time for lunar birthday", "location", location)
		processing = &birthtime.Result{
			OriginalDate: birthday,
			OriginalSlot: slot,
			AdjustedDate: birthday,
			AdjustedSlot: slot,
			Place:        location,
			Failure:      lunarSkipReason,
		}
	default:
		adjusted, err := s.adjuster.Adjust(ctx, birthtime.Request{BirthDate: birthday, Slot: slot, Place: location})
		if err != nil {
			return Response{}, err
		}
		processing = &adjusted
		date, slot = adjusted.AdjustedDate, adjusted.AdjustedSlot
	}

	chartDate, timeIndex, err := toChartSlot(date, slot)
	if err != nil {
		return Response{}, err
	}
	chartReq := ChartRequest{
		Date:        chartDate,
		TimeIndex:   timeIndex,
		Gender:      gender,
		Calendar:    calendar,
		IsLeapMonth: calendar == CalendarLunar && req.IsLeapMonth,
		FixLeap:     true,
		Language:    language,
	}

	chart, err := s.chart.Chart(ctx, chartReq)
	if err != nil {
		s.logger.Error("chart generation failed", "date", chartReq.Date, "time_index", chartReq.TimeIndex, "error", err)
		if apperrors.CodeOf(err) == "" {
			err = apperrors.Wrap("chart_error", "chart generation failed", err)
		}
		return Response{}, err
	}

	return Response{
		Astrolabe: chart,
		InputParameters: InputParameters{
			OriginalBirthday:  req.Birthday,
			OriginalBirthTime: int(req.BirthTime),
			Gender:            gender,
			CalendarType:      calendar,
			IsLeapMonth:       req.IsLeapMonth,
			Language:          language,
			Location:          location,
		},
		ChartParameters:    chartReq,
		LocationProcessing: processing,
	}, nil
}
