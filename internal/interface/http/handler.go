package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/iztro-mcp/internal/domain/astrolabe"
	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	"github.com/yanqian/iztro-mcp/internal/domain/solartime"
	"github.com/yanqian/iztro-mcp/pkg/metrics"
)

// Handler wires the REST transport to domain services.
type Handler struct {
	geoSvc   geo.Service
	astroSvc astrolabe.Service
	lookups  *metrics.LookupCounters
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(geoSvc geo.Service, astroSvc astrolabe.Service, lookups *metrics.LookupCounters, logger *slog.Logger) *Handler {
	return &Handler{
		geoSvc:   geoSvc,
		astroSvc: astroSvc,
		lookups:  lookups,
		logger:   logger.With("component", "http.handler"),
	}
}

type geocodeRequest struct {
	Location string `json:"location" binding:"required"`
}

type geocodeResponse struct {
	Location string `json:"location"`
	geo.Coordinate
}

type solarTimeRequest struct {
	BeijingTime string   `json:"beijingTime" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	Latitude    *float64 `json:"latitude"`
}

type astrolabeRequest struct {
	Birthday     string `json:"birthday" binding:"required"`
	BirthTime    *int   `json:"birthTime" binding:"required"`
	Gender       string `json:"gender" binding:"required"`
	CalendarType string `json:"calendarType"`
	IsLeapMonth  bool   `json:"isLeapMonth"`
	Language     string `json:"language"`
	Location     string `json:"location"`
}

// Geocode resolves a place name.
func (h *Handler) Geocode(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	coord, err := h.geoSvc.Geocode(c.Request.Context(), req.Location)
	if err != nil {
		abortWithError(c, fromDomainError(err, "geocode_failed"))
		return
	}

	c.JSON(http.StatusOK, geocodeResponse{Location: req.Location, Coordinate: coord})
}

// SolarTime converts Beijing time to apparent solar time.
func (h *Handler) SolarTime(c *gin.Context) {
	var req solarTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	rep, err := solartime.NewReport(req.BeijingTime, *req.Longitude, req.Latitude)
	if err != nil {
		abortWithError(c, fromDomainError(err, "conversion_failed"))
		return
	}

	c.JSON(http.StatusOK, rep)
}

// Astrolabe generates a natal chart.
func (h *Handler) Astrolabe(c *gin.Context) {
	var req astrolabeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.astroSvc.Generate(c.Request.Context(), astrolabe.Request{
		Birthday:     req.Birthday,
		BirthTime:    solartime.Slot(*req.BirthTime),
		Gender:       req.Gender,
		CalendarType: req.CalendarType,
		IsLeapMonth:  req.IsLeapMonth,
		Language:     req.Language,
		Location:     req.Location,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err, "astrolabe_failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health reports liveness along with geocode cache counters.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"geocode": h.lookups.Snapshot(),
	})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
