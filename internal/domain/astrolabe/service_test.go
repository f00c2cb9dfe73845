package astrolabe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/iztro-mcp/internal/domain/birthtime"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

func TestGenerateWithoutLocation(t *testing.T) {
	chart := &stubChart{payload: json.RawMessage(`{"palaces":[]}`)}
	svc := newTestService(&stubGeocoder{}, chart)

	resp, err := svc.Generate(context.Background(), Request{
		Birthday:  "2000/08/16",
		BirthTime: 2,
		Gender:    "女",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"palaces":[]}`, string(resp.Astrolabe))
	require.Nil(t, resp.LocationProcessing)
	require.Equal(t, ChartRequest{
		Date:      "2000-08-16",
		TimeIndex: 2,
		Gender:    GenderFemale,
		Calendar:  CalendarSolar,
		FixLeap:   true,
		Language:  "zh-CN",
	}, chart.last)
	require.Equal(t, "2000/08/16", resp.InputParameters.OriginalBirthday)
	require.Equal(t, GenderFemale, resp.InputParameters.Gender)
}

func TestGenerateAppliesLocationCorrection(t *testing.T) {
	chart := &stubChart{payload: json.RawMessage(`{}`)}
	svc := newTestService(&stubGeocoder{coord: geo.Coordinate{Longitude: 116.4, Latitude: 39.9}}, chart)

	resp, err := svc.Generate(context.Background(), Request{
		Birthday:  "2024-06-01",
		BirthTime: solartime.EarlyRat,
		Gender:    "male",
		Location:  "北京",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.LocationProcessing)
	require.True(t, resp.LocationProcessing.Applied)
	require.Equal(t, "2024-05-31", resp.LocationProcessing.AdjustedDate)
	require.Equal(t, solartime.LateRat, resp.LocationProcessing.AdjustedSlot)

	// late rat hour of May 31 is charted as the rat hour of June 1.
	require.Equal(t, "2024-06-01", chart.last.Date)
	require.Equal(t, 0, chart.last.TimeIndex)
}

func TestGenerateLateRatCarriesToNextDay(t *testing.T) {
	chart := &stubChart{payload: json.RawMessage(`{}`)}
	svc := newTestService(&stubGeocoder{}, chart)

	_, err := svc.Generate(context.Background(), Request{Birthday: "2023-12-31", BirthTime: solartime.LateRat, Gender: "male"})
	require.NoError(t, err)
	require.Equal(t, "2024-01-01", chart.last.Date)
	require.Equal(t, 0, chart.last.TimeIndex)
}

func TestGenerateFallsBackWhenGeocodingFails(t *testing.T) {
	chart := &stubChart{payload: json.RawMessage(`{}`)}
	svc := newTestService(&stubGeocoder{err: errors.New("upstream down")}, chart)

	resp, err := svc.Generate(context.Background(), Request{Birthday: "1995-03-10", BirthTime: 5, Gender: "男", Location: "nowhere"})
	require.NoError(t, err)
	require.NotNil(t, resp.LocationProcessing)
	require.False(t, resp.LocationProcessing.Applied)
	require.Contains(t, resp.LocationProcessing.Failure, "upstream down")
	require.Equal(t, "1995-03-10", chart.last.Date)
	require.Equal(t, 5, chart.last.TimeIndex)
}

func TestGenerateLunarSkipsCorrection(t *testing.T) {
	geocoder := &stubGeocoder{coord: geo.Coordinate{Longitude: 87.6}}
	chart := &stubChart{payload: json.RawMessage(`{}`)}
	svc := newTestService(geocoder, chart)

	resp, err := svc.Generate(context.Background(), Request{
		Birthday:     "1990-02-30",
		BirthTime:    4,
		Gender:       "female",
		CalendarType: "农历",
		IsLeapMonth:  true,
		Language:     "en-US",
		Location:     "乌鲁木齐",
	})
	require.NoError(t, err)
	require.Zero(t, geocoder.calls)
	require.Equal(t, lunarSkipReason, resp.LocationProcessing.Failure)
	require.Equal(t, ChartRequest{
		Date:        "1990-02-30",
		TimeIndex:   4,
		Gender:      GenderFemale,
		Calendar:    CalendarLunar,
		IsLeapMonth: true,
		FixLeap:     true,
		Language:    "en-US",
	}, chart.last)
}

func TestGenerateValidation(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"missing gender", Request{Birthday: "2000-01-01", BirthTime: 1}},
		{"unknown gender", Request{Birthday: "2000-01-01", BirthTime: 1, Gender: "x"}},
		{"bad calendar", Request{Birthday: "2000-01-01", BirthTime: 1, Gender: "男", CalendarType: "julian"}},
		{"bad language", Request{Birthday: "2000-01-01", BirthTime: 1, Gender: "男", Language: "fr-FR"}},
		{"bad birthday format", Request{Birthday: "01-01-2000", BirthTime: 1, Gender: "男"}},
		{"impossible solar date", Request{Birthday: "2023-02-29", BirthTime: 1, Gender: "男"}},
		{"lunar day out of range", Request{Birthday: "2023-02-31", BirthTime: 1, Gender: "男", CalendarType: "lunar"}},
		{"slot out of range", Request{Birthday: "2000-01-01", BirthTime: 13, Gender: "男"}},
		{"lunar late rat", Request{Birthday: "2000-01-01", BirthTime: solartime.LateRat, Gender: "男", CalendarType: "lunar"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chart := &stubChart{}
			svc := newTestService(&stubGeocoder{}, chart)
			_, err := svc.Generate(context.Background(), tc.req)
			require.True(t, apperrors.IsCode(err, "invalid_input"), "got %v", err)
			require.Zero(t, chart.calls)
		})
	}
}

func TestGenerateWrapsChartErrors(t *testing.T) {
	svc := newTestService(&stubGeocoder{}, &stubChart{err: errors.New("connection refused")})

	_, err := svc.Generate(context.Background(), Request{Birthday: "2000-01-01", BirthTime: 1, Gender: "男"})
	require.True(t, apperrors.IsCode(err, "chart_error"))
}

func TestToChartSlot(t *testing.T) {
	date, idx, err := toChartSlot("2024-02-28", 11)
	require.NoError(t, err)
	require.Equal(t, "2024-02-28", date)
	require.Equal(t, 11, idx)

	date, idx, err = toChartSlot("2024-02-28", solartime.LateRat)
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", date)
	require.Equal(t, 0, idx)
}

func newTestService(geocoder birthtime.Geocoder, chart ChartClient) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(Config{DefaultLanguage: "zh-CN"}, birthtime.NewService(geocoder, logger), chart, logger)
}

type stubGeocoder struct {
	coord geo.Coordinate
	err   error
	calls int
}

func (s *stubGeocoder) Geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	s.calls++
	if s.err != nil {
		return geo.Coordinate{}, s.err
	}
	return s.coord, nil
}

type stubChart struct {
	payload json.RawMessage
	err     error
	last    ChartRequest
	calls   int
}

func (s *stubChart) Chart(ctx context.Context, req ChartRequest) (json.RawMessage, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}
