package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/iztro-mcp/internal/domain/geo"
	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

const (
	defaultBaseURL = "https://restapi.amap.com"
	defaultTimeout = 5 * time.Second
	geocodePath    = "/v3/geocode/geo"
)

const missingKeyMessage = "AMap API key is not configured; set the AMAP_API_KEY environment variable " +
	"(a .env file works too) or geocode.apiKey in the config file. Keys are issued at https://console.amap.com/dev/key/app"

// Client resolves addresses with the AMap (Gaode) web service geocoder.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds an API client. Every request is bounded by timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(url, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Geocode resolves place to the first matching coordinate.
func (c *Client) Geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	if c.apiKey == "" {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error", missingKeyMessage, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("address", place)
	query.Set("output", "json")
	endpoint := c.baseURL + geocodePath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error", "build geocode request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error", "geocode request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return geo.Coordinate{}, apperrors.Wrap("geocode_error",
			fmt.Sprintf("geocode request error: status=%d body=%s", resp.StatusCode, string(payload)), nil)
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error", "decode geocode response", err)
	}
	if raw.Status != "1" {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error",
			fmt.Sprintf("geocode api error: %s (infocode %s)", raw.Info, raw.InfoCode), nil)
	}
	if len(raw.Geocodes) == 0 {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error", fmt.Sprintf("no location found for %q", place), nil)
	}

	first := raw.Geocodes[0]
	lng, lat, err := parseLocation(first.Location)
	if err != nil {
		return geo.Coordinate{}, apperrors.Wrap("geocode_error", "malformed geocode location", err)
	}
	coord := geo.Coordinate{
		Longitude:        lng,
		Latitude:         lat,
		FormattedAddress: first.FormattedAddress,
	}
	if err := coord.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return coord, nil
}

type apiResponse struct {
	Status   string    `json:"status"`
	Info     string    `json:"info"`
	InfoCode string    `json:"infocode"`
	Geocodes []geocode `json:"geocodes"`
}

type geocode struct {
	FormattedAddress string `json:"formatted_address"`
	Location         string `json:"location"`
}

// parseLocation splits AMap's "lng,lat" pair.
func parseLocation(value string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"lng,lat\", got %q", value)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude: %w", err)
	}
	return lng, lat, nil
}

var _ geo.Provider = (*Client)(nil)
