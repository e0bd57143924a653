package model

import "time"

// Category is the incident class assigned by keyword or AI classification.
type Category string

const (
	CategoryTrafficAccident Category = "accidente_vial"
	CategoryFire            Category = "incendio"
	CategorySecurity        Category = "seguridad"
	CategoryBlockage        Category = "bloqueo"
	CategoryNaturalDisaster Category = "desastre_natural"
	CategoryNone            Category = "no_relevante"
)

// CategoryOrder fixes the priority in which keyword lists are scanned.
// When a text matches keywords of more than one category, the first
// category in this order wins.
var CategoryOrder = []Category{
	CategoryTrafficAccident,
	CategoryFire,
	CategorySecurity,
	CategoryBlockage,
	CategoryNaturalDisaster,
}

// Label returns a human-readable Spanish label for alert payloads.
func (c Category) Label() string {
	switch c {
	case CategoryTrafficAccident:
		return "Accidente Vial"
	case CategoryFire:
		return "Incendio"
	case CategorySecurity:
		return "Situación de Seguridad"
	case CategoryBlockage:
		return "Bloqueo de Vialidad"
	case CategoryNaturalDisaster:
		return "Desastre Natural"
	default:
		return string(c)
	}
}

// TrafficImpact is the oracle-reported traffic disruption level.
type TrafficImpact string

const (
	TrafficNone   TrafficImpact = "none"
	TrafficLow    TrafficImpact = "low"
	TrafficMedium TrafficImpact = "medium"
	TrafficHigh   TrafficImpact = "high"
)

// CandidateItem is one scraped unit, article or post. It is created by a
// scraper, consumed exactly once by the pipeline and never mutated.
type CandidateItem struct {
	Title  string
	Body   string
	URL    string
	Source string
}

// Text joins title and body for lexical scans.
func (c CandidateItem) Text() string {
	if c.Body == "" || c.Body == c.Title {
		return c.Title
	}
	return c.Title + " " + c.Body
}

// ClassificationResult is the outcome of keyword or AI classification.
// Category is CategoryNone exactly when IsHighImpact is false.
type ClassificationResult struct {
	IsHighImpact bool
	Category     Category
}

// LocationCandidate is a location hypothesis. A candidate with
// IsSpecific=false never advances past the extractor.
type LocationCandidate struct {
	RawText        string
	NormalizedText string
	IsSpecific     bool
	Confidence     float64
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AreaCentroid maps a known area name to its representative coordinates.
// Centroid lists are ordered: when a text names several known areas, the
// first entry in list order wins, so resolution is deterministic.
type AreaCentroid struct {
	Area  string
	Point GeoPoint
}

// PointOfInterest is a monitored location. KeyCorridors holds lexical
// aliases for roads considered to belong to this point even when an event
// geocodes outside the radius.
type PointOfInterest struct {
	Name         string
	Coords       GeoPoint
	Address      string
	KeyCorridors []string
}

// ProximityResult reports the nearest POI to resolved coordinates.
// WithinRadius is true only when DistanceKM <= the configured radius or
// MatchedCorridor is non-empty.
type ProximityResult struct {
	Nearest         PointOfInterest
	DistanceKM      float64
	WithinRadius    bool
	MatchedCorridor string
}

// AILocation is the oracle's location judgment.
type AILocation struct {
	Extracted  string  `json:"extracted"`
	Normalized string  `json:"normalized"`
	Confidence float64 `json:"confidence"`
	IsSpecific bool    `json:"is_specific"`
}

// AIDetails carries secondary incident attributes from the oracle.
type AIDetails struct {
	Victims           int           `json:"victims"`
	TrafficImpact     TrafficImpact `json:"traffic_impact"`
	EmergencyServices bool          `json:"emergency_services"`
	TimeReference     string        `json:"time_reference"`
}

// AIAnalysis is the structured judgment returned by the enrichment oracle.
type AIAnalysis struct {
	IsRelevant      bool       `json:"is_relevant"`
	Category        Category   `json:"category"`
	Severity        int        `json:"severity"`
	Location        AILocation `json:"location"`
	Summary         string     `json:"summary"`
	Details         AIDetails  `json:"details"`
	ExclusionReason string     `json:"exclusion_reason"`
}

// EventRecord is the final enriched decision artifact. Identity is the
// normalized-title hash, with (URL, Source) as a secondary key. Immutable
// after creation except for the one-way AlertSent false->true transition.
type EventRecord struct {
	ID                string        `json:"id"`
	Hash              string        `json:"hash"`
	Title             string        `json:"title"`
	Summary           string        `json:"summary"`
	URL               string        `json:"url"`
	Source            string        `json:"source"`
	Category          Category      `json:"category"`
	Severity          int           `json:"severity"`
	LocationText      string        `json:"location_text"`
	Coords            GeoPoint      `json:"coords"`
	NearestPOI        string        `json:"nearest_poi"`
	POIAddress        string        `json:"poi_address"`
	DistanceKM        float64       `json:"distance_km"`
	MatchedCorridor   string        `json:"matched_corridor,omitempty"`
	Victims           int           `json:"victims"`
	TrafficImpact     TrafficImpact `json:"traffic_impact"`
	EmergencyServices bool          `json:"emergency_services"`
	AlertSent         bool          `json:"alert_sent"`
	EventTime         time.Time     `json:"event_time"`
	PublishedTime     time.Time     `json:"published_time"`
	DetectedAt        time.Time     `json:"detected_at"`
}
