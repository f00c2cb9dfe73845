package birthtime

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

// Service re-derives a birth date and time slot in apparent solar time.
type Service interface {
	Adjust(ctx context.Context, req Request) (Result, error)
}

// Geocoder resolves the birth place.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (geo.Coordinate, error)
}

type service struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewService wires up the birth-time adjustment domain.
func NewService(geocoder Geocoder, logger *slog.Logger) Service {
	return &service{
		geocoder: geocoder,
		logger:   logger.With("component", "birthtime.service"),
	}
}

// Adjust only returns validation errors. Geocoding and conversion failures
// yield the unadjusted inputs with Result.Failure set.
func (s *service) Adjust(ctx context.Context, req Request) (Result, error) {
	date, err := solartime.ParseDate(req.BirthDate)
	if err != nil {
		return Result{}, err
	}
	hour, ok := req.Slot.Hour()
	if !ok {
		return Result{}, apperrors.Wrap("invalid_input", "birth time slot must be within 0-12", nil)
	}

	birthDate := date.Format(solartime.DateLayout)
	res := Result{
		OriginalDate: birthDate,
		OriginalSlot: req.Slot,
		AdjustedDate: birthDate,
		AdjustedSlot: req.Slot,
	}

	place := strings.TrimSpace(req.Place)
	if place == "" {
		return res, nil
	}
	res.Place = place

	coord, err := s.geocoder.Geocode(ctx, place)
	if err != nil {
		s.logger.Warn("geocoding failed, keeping civil birth time", "place", place, "error", err)
		res.Failure = err.Error()
		return res, nil
	}

	civil := date.Add(time.Duration(hour) * time.Hour)
	conv, err := solartime.Convert(civil, coord.Longitude)
	if err != nil {
		s.logger.Warn("apparent solar time conversion failed, keeping civil birth time", "place", place, "longitude", coord.Longitude, "error", err)
		res.Failure = err.Error()
		return res, nil
	}

	res.Applied = true
	res.Coordinate = &coord
	res.CivilTime = solartime.FormatCivil(conv.Civil)
	res.ApparentSolarTime = solartime.FormatCivil(conv.Apparent)
	res.EquationOfTimeMinutes = conv.EquationOfTime
	res.LongitudeCorrectionMinutes = conv.LongitudeCorrection
	res.AdjustedDate = conv.Apparent.Format(solartime.DateLayout)
	res.AdjustedSlot = solartime.HourToSlot(conv.Apparent.Hour())

	s.logger.Info("birth time adjusted",
		"place", place,
		"civil", res.CivilTime,
		"apparent", res.ApparentSolarTime,
		"original_slot", int(res.OriginalSlot),
		"adjusted_slot", int(res.AdjustedSlot))
	return res, nil
}
