package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/pkg/circuitbreaker"
	"github.com/incident-watch/backend/pkg/logger"
)

// Geocoder resolves a location string to coordinates. Known area centroids
// resolve from a static gazetteer without a network call; everything else
// goes to the live geocoding service, first with the configured
// city/region suffix and once more without it.
type Geocoder struct {
	baseURL    string
	userAgent  string
	suffix     string
	centroids  []model.AreaCentroid
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewGeocoder(baseURL, userAgent, suffix string, timeoutSec int, centroids []model.AreaCentroid) *Geocoder {
	if timeoutSec <= 0 {
		timeoutSec = 10
	}

	cb := circuitbreaker.New("geocoder", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          60 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	return &Geocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		suffix:    suffix,
		centroids: centroids,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		cb: cb,
	}
}

// Geocode returns coordinates for a location string, or nil when nothing
// resolves. The static gazetteer wins over the live service so known areas
// resolve deterministically.
func (g *Geocoder) Geocode(ctx context.Context, locationText string) *model.GeoPoint {
	lowered := strings.ToLower(strings.TrimSpace(locationText))
	if lowered == "" {
		return nil
	}

	// The gazetteer is scanned in configuration order; a text naming more
	// than one known area always resolves to the first listed one.
	for _, centroid := range g.centroids {
		if strings.Contains(lowered, centroid.Area) {
			logger.Debug("Location resolved from gazetteer",
				zap.String("area", centroid.Area),
			)
			point := centroid.Point
			return &point
		}
	}

	// Live lookup: at most two calls, with and without the region suffix.
	if point := g.lookup(ctx, locationText+", "+g.suffix); point != nil {
		return point
	}
	return g.lookup(ctx, locationText)
}

func (g *Geocoder) lookup(ctx context.Context, query string) *model.GeoPoint {
	var point *model.GeoPoint

	err := g.cb.Execute(ctx, func() error {
		resolved, err := g.search(ctx, query)
		if err != nil {
			return err
		}
		point = resolved
		return nil
	})

	if err != nil {
		logger.Warn("Geocoding lookup failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	return point
}

func (g *Geocoder) search(ctx context.Context, query string) (*model.GeoPoint, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	return &model.GeoPoint{Lat: lat, Lon: lon}, nil
}
