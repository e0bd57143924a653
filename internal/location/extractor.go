package location

import (
	"regexp"
	"strings"

	"github.com/incident-watch/backend/internal/model"
)

var structuredPatterns = []*regexp.Regexp{
	// avenues and streets, with an optional cross street
	regexp.MustCompile(`(?:av\.|avenida|calle|c\.|blvd\.|boulevard)\s+([a-záéíóúñ\s]+?)(?:\s+(?:y|con|cruce|esquina)\s+(?:av\.|avenida|calle|c\.)\s+([a-záéíóúñ\s]+?))?(?:\s+en|\s+col\.|,|\.|$)`),
	// colonias
	regexp.MustCompile(`(?:colonia|col\.)\s+([a-záéíóúñ\s]+?)(?:,|\.|$)`),
	// intersections
	regexp.MustCompile(`cruce\s+(?:de\s+)?([a-záéíóúñ\s]+?)\s+(?:y|con)\s+([a-záéíóúñ\s]+?)(?:,|\.|$)`),
	// highway kilometre markers
	regexp.MustCompile(`carretera\s+([a-záéíóúñ\s]+?)\s+(?:km|kilómetro)\s+(\d+)`),
}

// Extractor derives a candidate location string from free text using
// structured street patterns and a curated gazetteer.
type Extractor struct {
	specificAreas []string
	genericAreas  []string
}

func NewExtractor(specificAreas, genericAreas []string) *Extractor {
	lower := func(areas []string) []string {
		out := make([]string, 0, len(areas))
		for _, a := range areas {
			out = append(out, strings.ToLower(a))
		}
		return out
	}
	return &Extractor{
		specificAreas: lower(specificAreas),
		genericAreas:  lower(genericAreas),
	}
}

// Extract returns the first usable location hypothesis, or nil. Generic
// areas (bare city or state names) yield nil rather than a non-specific
// candidate: the consuming stage only needs the binary "is there a usable
// location", so collapsing to nil keeps the contract simple.
func (e *Extractor) Extract(text string) *model.LocationCandidate {
	lowered := strings.ToLower(text)

	for _, pattern := range structuredPatterns {
		match := pattern.FindStringSubmatch(lowered)
		if match == nil {
			continue
		}
		var parts []string
		for _, group := range match[1:] {
			group = strings.TrimSpace(group)
			if group != "" {
				parts = append(parts, group)
			}
		}
		if len(parts) > 0 {
			joined := strings.Join(parts, " ")
			return &model.LocationCandidate{
				RawText:        joined,
				NormalizedText: joined,
				IsSpecific:     true,
				Confidence:     1.0,
			}
		}
	}

	for _, area := range e.specificAreas {
		if strings.Contains(lowered, area) {
			return &model.LocationCandidate{
				RawText:        area,
				NormalizedText: area,
				IsSpecific:     true,
				Confidence:     1.0,
			}
		}
	}

	// A hit on a generic area means the text names a place but not one
	// precise enough to geocode usefully.
	for _, area := range e.genericAreas {
		if strings.Contains(lowered, area) {
			return nil
		}
	}

	return nil
}
