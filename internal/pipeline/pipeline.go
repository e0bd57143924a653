package pipeline

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/classify"
	"github.com/incident-watch/backend/internal/dedup"
	"github.com/incident-watch/backend/internal/geo"
	"github.com/incident-watch/backend/internal/location"
	"github.com/incident-watch/backend/internal/metrics"
	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/internal/notify"
	"github.com/incident-watch/backend/internal/recency"
	"github.com/incident-watch/backend/internal/scraper"
	"github.com/incident-watch/backend/internal/storage/models"
	"github.com/incident-watch/backend/pkg/logger"
	"github.com/incident-watch/backend/pkg/utils"
)

// Status is the terminal state of one candidate item.
type Status string

const (
	StatusAlerted  Status = "alerted"
	StatusRejected Status = "rejected"
)

// Rejection reasons reported in Decision.Reason and the metrics label.
const (
	ReasonDuplicate    = "duplicate"
	ReasonTooOld       = "too old"
	ReasonLowImpact    = "low impact"
	ReasonNoLocation   = "no specific location"
	ReasonGeocodeFail  = "geocode failure"
	ReasonOutOfRadius  = "out of radius"
	ReasonInternalFail = "internal failure"
)

// Decision is the outcome of processing one CandidateItem.
type Decision struct {
	Status Status
	Reason string
	Event  *model.EventRecord
}

func rejected(reason string) Decision {
	metrics.ItemsRejected.WithLabelValues(reason).Inc()
	return Decision{Status: StatusRejected, Reason: reason}
}

// Enricher is the optional AI oracle. A nil analysis means the call failed
// and the caller must fall back to the lexical path.
type Enricher interface {
	Analyze(ctx context.Context, title, content string) *model.AIAnalysis
}

// Geocoder resolves a location string to coordinates, nil when unresolved.
type Geocoder interface {
	Geocode(ctx context.Context, locationText string) *model.GeoPoint
}

// Store is the optional relational persistence collaborator.
type Store interface {
	IsDuplicate(ctx context.Context, hash, url, source string, window time.Duration) (bool, error)
	SaveEvent(ctx context.Context, event *model.EventRecord) error
	MarkAlertSent(ctx context.Context, eventID string) error
	StartRun(ctx context.Context, run *models.MonitorRun) error
	FinishRun(ctx context.Context, run *models.MonitorRun) error
}

// SourceScraper produces candidate items and article bodies.
type SourceScraper interface {
	Scrape(ctx context.Context, source scraper.Source) []model.CandidateItem
	ArticleContent(ctx context.Context, url string) string
}

// AlertSender delivers finished alerts.
type AlertSender interface {
	Notify(ctx context.Context, alert notify.Alert)
	NotifySummary(ctx context.Context, summary notify.RunSummary)
}

type Config struct {
	RadiusKM       float64
	DedupWindow    time.Duration
	SourcePause    time.Duration
	UseAI          bool
	SendRunSummary bool
}

// Pipeline sequences recency, classification, location resolution,
// geocoding, proximity and dedup into one per-item decision function.
type Pipeline struct {
	cfg        Config
	classifier *classify.Classifier
	recency    *recency.Filter
	extractor  *location.Extractor
	enricher   Enricher
	geocoder   Geocoder
	tracker    dedup.Tracker
	store      Store
	notifier   AlertSender
	scraper    SourceScraper
	pois       []model.PointOfInterest
	sources    []scraper.Source

	// keyLocks serializes check-then-mark per dedup key so two identical
	// items cannot both pass the seen check. Striped so the lock set stays
	// bounded no matter how many distinct keys pass through.
	keyLocks [lockStripes]sync.Mutex
}

const lockStripes = 64

func New(
	cfg Config,
	classifier *classify.Classifier,
	recencyFilter *recency.Filter,
	extractor *location.Extractor,
	enricher Enricher,
	geocoder Geocoder,
	tracker dedup.Tracker,
	store Store,
	notifier AlertSender,
	sourceScraper SourceScraper,
	pois []model.PointOfInterest,
	sources []scraper.Source,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		recency:    recencyFilter,
		extractor:  extractor,
		enricher:   enricher,
		geocoder:   geocoder,
		tracker:    tracker,
		store:      store,
		notifier:   notifier,
		scraper:    sourceScraper,
		pois:       pois,
		sources:    sources,
	}
}

func (p *Pipeline) lockKey(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	lock := &p.keyLocks[h.Sum32()%lockStripes]

	lock.Lock()
	return lock.Unlock
}

// ProcessItem runs one candidate through the full decision sequence. A
// panic inside any stage is isolated to this item.
func (p *Pipeline) ProcessItem(ctx context.Context, item model.CandidateItem) (decision Decision) {
	start := time.Now()
	defer func() {
		metrics.ItemDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			logger.Error("Item processing panicked",
				zap.String("title", item.Title),
				zap.Any("panic", r),
			)
			decision = rejected(ReasonInternalFail)
		}
	}()

	hash := utils.NormalizedHash(item.Title)
	key := item.URL
	if key == "" {
		key = hash
	}

	unlock := p.lockKey(key)
	defer unlock()

	if p.isDuplicate(ctx, hash, item) || p.tracker.Seen(ctx, key) {
		return rejected(ReasonDuplicate)
	}

	now := time.Now()
	if ok, reason := p.recency.IsRecent(item.Text(), now); !ok {
		logger.Debug("Item rejected as stale",
			zap.String("title", item.Title),
			zap.String("reason", reason),
		)
		return rejected(ReasonTooOld)
	}

	// Cheap lexical pre-filter on the title before any paid calls.
	classification := p.classifier.Classify(item.Title)
	if !classification.IsHighImpact {
		return rejected(ReasonLowImpact)
	}

	content := item.Text()
	if item.URL != "" && p.scraper != nil {
		if full := p.scraper.ArticleContent(ctx, item.URL); full != "" {
			content = full
		}
	}

	var analysis *model.AIAnalysis
	if p.cfg.UseAI && p.enricher != nil {
		analysis = p.enricher.Analyze(ctx, item.Title, content)
		if analysis == nil {
			// Oracle failure degrades to the deterministic path for this
			// item; it must never drop the item silently.
			metrics.AIFallbacks.Inc()
			logger.Warn("AI enrichment unavailable, using lexical path",
				zap.String("title", item.Title),
			)
		} else if !analysis.IsRelevant {
			reason := analysis.ExclusionReason
			if reason == "" {
				reason = ReasonLowImpact
			}
			logger.Debug("Item excluded by AI",
				zap.String("title", item.Title),
				zap.String("reason", reason),
			)
			// The oracle's own wording travels in the decision; the metric
			// keeps the coarse label so label cardinality stays bounded.
			metrics.ItemsRejected.WithLabelValues(ReasonLowImpact).Inc()
			return Decision{Status: StatusRejected, Reason: reason}
		}
	}

	if analysis != nil && analysis.Category != model.CategoryNone {
		classification.Category = analysis.Category
	}

	locationText, normalized := p.resolveLocation(content, analysis)
	if locationText == "" {
		return rejected(ReasonNoLocation)
	}

	coords := p.geocoder.Geocode(ctx, normalized)
	if coords == nil && normalized != locationText {
		coords = p.geocoder.Geocode(ctx, locationText)
	}
	if coords == nil {
		metrics.GeocoderCalls.WithLabelValues("miss").Inc()
		return rejected(ReasonGeocodeFail)
	}
	metrics.GeocoderCalls.WithLabelValues("hit").Inc()

	proximity := geo.ResolveProximity(*coords, content, p.pois, p.cfg.RadiusKM)
	if !proximity.WithinRadius {
		logger.Debug("Item outside radius",
			zap.String("title", item.Title),
			zap.Float64("distance_km", proximity.DistanceKM),
		)
		return rejected(ReasonOutOfRadius)
	}

	event := p.buildEvent(item, hash, classification.Category, locationText, *coords, proximity, analysis, now)

	if p.store != nil {
		if err := p.store.SaveEvent(ctx, event); err != nil {
			logger.Error("Failed to persist event", zap.Error(err))
		}
	}

	p.notifier.Notify(ctx, buildAlert(item, event, proximity))

	if p.store != nil {
		if err := p.store.MarkAlertSent(ctx, event.ID); err != nil {
			logger.Warn("Failed to mark alert sent", zap.Error(err))
		}
	}
	event.AlertSent = true

	if err := p.tracker.MarkSeen(ctx, key); err != nil {
		logger.Warn("Failed to mark item seen", zap.Error(err))
	}

	metrics.AlertsSent.WithLabelValues(string(event.Category)).Inc()

	return Decision{Status: StatusAlerted, Event: event}
}

func (p *Pipeline) isDuplicate(ctx context.Context, hash string, item model.CandidateItem) bool {
	if p.store == nil {
		return false
	}
	dup, err := p.store.IsDuplicate(ctx, hash, item.URL, item.Source, p.cfg.DedupWindow)
	if err != nil {
		logger.Warn("Duplicate check failed", zap.Error(err))
		return false
	}
	return dup
}

// resolveLocation prefers the oracle's judgment when present and specific;
// otherwise the lexical extractor decides. Non-specific oracle locations
// are treated as no usable location.
func (p *Pipeline) resolveLocation(content string, analysis *model.AIAnalysis) (text, normalized string) {
	if analysis != nil {
		loc := analysis.Location
		if loc.Extracted == "" || !loc.IsSpecific {
			return "", ""
		}
		normalized = loc.Normalized
		if normalized == "" {
			normalized = loc.Extracted
		}
		return loc.Extracted, normalized
	}

	candidate := p.extractor.Extract(content)
	if candidate == nil || !candidate.IsSpecific {
		return "", ""
	}
	return candidate.RawText, candidate.NormalizedText
}

func (p *Pipeline) buildEvent(
	item model.CandidateItem,
	hash string,
	category model.Category,
	locationText string,
	coords model.GeoPoint,
	proximity model.ProximityResult,
	analysis *model.AIAnalysis,
	now time.Time,
) *model.EventRecord {
	event := &model.EventRecord{
		ID:              uuid.NewString(),
		Hash:            hash,
		Title:           item.Title,
		Summary:         item.Title,
		URL:             item.URL,
		Source:          item.Source,
		Category:        category,
		Severity:        5,
		LocationText:    locationText,
		Coords:          coords,
		NearestPOI:      proximity.Nearest.Name,
		POIAddress:      proximity.Nearest.Address,
		DistanceKM:      proximity.DistanceKM,
		MatchedCorridor: proximity.MatchedCorridor,
		EventTime:       now,
		PublishedTime:   now,
		DetectedAt:      now,
	}

	if published := recency.ExtractTime(item.Text(), now); published != nil {
		event.PublishedTime = *published
	}

	if analysis != nil {
		event.Severity = analysis.Severity
		if analysis.Summary != "" {
			event.Summary = analysis.Summary
		}
		event.Victims = analysis.Details.Victims
		event.TrafficImpact = analysis.Details.TrafficImpact
		event.EmergencyServices = analysis.Details.EmergencyServices
	}

	return event
}

func buildAlert(item model.CandidateItem, event *model.EventRecord, proximity model.ProximityResult) notify.Alert {
	return notify.Alert{
		Category:      event.Category,
		Title:         event.Title,
		Location:      event.LocationText,
		DistanceKM:    proximity.DistanceKM,
		NearestPOI:    proximity.Nearest.Name,
		POIAddress:    proximity.Nearest.Address,
		Source:        item.Source,
		URL:           item.URL,
		Summary:       event.Summary,
		Severity:      event.Severity,
		Victims:       event.Victims,
		TrafficImpact: event.TrafficImpact,
		Emergency:     event.EmergencyServices,
	}
}

// RunOnce executes one full monitoring cycle over every configured source.
// Cancellation finishes the in-flight item and halts before the next.
func (p *Pipeline) RunOnce(ctx context.Context) {
	runStart := time.Now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(runStart).Seconds())
	}()

	run := &models.MonitorRun{
		ID:        uuid.NewString(),
		StartedAt: runStart,
		Status:    models.RunStatusInProgress,
	}

	if p.store != nil {
		if err := p.store.StartRun(ctx, run); err != nil {
			logger.Warn("Failed to record run start", zap.Error(err))
		}
	}

	logger.Info("Monitoring cycle started",
		zap.Int("sources", len(p.sources)),
		zap.Bool("ai_enabled", p.cfg.UseAI),
	)

	for i, source := range p.sources {
		if ctx.Err() != nil {
			logger.Info("Monitoring cycle cancelled")
			break
		}

		items := p.scraper.Scrape(ctx, source)
		for _, item := range items {
			if ctx.Err() != nil {
				break
			}

			metrics.ItemsScanned.WithLabelValues(source.Name).Inc()
			run.ItemsAnalyzed++

			decision := p.ProcessItem(ctx, item)
			switch {
			case decision.Status == StatusAlerted:
				run.AlertsSent++
				run.ItemsNew++
			case decision.Reason == ReasonDuplicate:
				run.ItemsDuplicate++
			case decision.Reason == ReasonTooOld:
				// Stale re-surfaced material is neither new nor a duplicate.
			default:
				run.ItemsNew++
			}
		}

		// Politeness pause between sources; rate limiting, not correctness.
		if i < len(p.sources)-1 && p.cfg.SourcePause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.SourcePause):
			}
		}
	}

	run.Status = models.RunStatusCompleted
	if ctx.Err() != nil {
		run.ErrorMessage = ctx.Err().Error()
	}

	if p.store != nil {
		if err := p.store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			logger.Warn("Failed to record run finish", zap.Error(err))
		}
	}

	logger.Info("Monitoring cycle finished",
		zap.Int("items_analyzed", run.ItemsAnalyzed),
		zap.Int("alerts_sent", run.AlertsSent),
		zap.Int("duplicates", run.ItemsDuplicate),
	)

	if p.cfg.SendRunSummary && run.AlertsSent == 0 {
		p.notifier.NotifySummary(context.WithoutCancel(ctx), notify.RunSummary{
			Timestamp:     runStart.Format("02/01/2006 15:04"),
			ItemsAnalyzed: run.ItemsAnalyzed,
			AlertsSent:    run.AlertsSent,
		})
	}
}
