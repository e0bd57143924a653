package geo

import (
	"strings"

	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/pkg/logger"
)

// ResolveProximity finds the nearest POI to the event coordinates and
// decides admission by radius. When the radius check fails, the raw event
// text is scanned against every POI's corridor aliases in POI order, then
// alias order: a street-name report may geocode to a centroid kilometres
// from the POI while still sitting on its access road, and the corridor
// list encodes that domain knowledge.
func ResolveProximity(coords model.GeoPoint, eventText string, pois []model.PointOfInterest, radiusKM float64) model.ProximityResult {
	if len(pois) == 0 {
		return model.ProximityResult{}
	}

	nearest := pois[0]
	minDistance := DistanceKM(coords, pois[0].Coords)
	for _, poi := range pois[1:] {
		d := DistanceKM(coords, poi.Coords)
		if d < minDistance {
			minDistance = d
			nearest = poi
		}
	}

	result := model.ProximityResult{
		Nearest:      nearest,
		DistanceKM:   minDistance,
		WithinRadius: minDistance <= radiusKM,
	}

	if result.WithinRadius {
		return result
	}

	lowered := strings.ToLower(eventText)
	for _, poi := range pois {
		for _, alias := range poi.KeyCorridors {
			if strings.Contains(lowered, alias) {
				logger.Debug("Corridor override matched",
					zap.String("alias", alias),
					zap.String("poi", poi.Name),
				)
				return model.ProximityResult{
					Nearest:         poi,
					DistanceKM:      DistanceKM(coords, poi.Coords),
					WithinRadius:    true,
					MatchedCorridor: alias,
				}
			}
		}
	}

	return result
}
