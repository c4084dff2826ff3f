package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	apperrors "github.com/yanqian/activity-for-you/pkg/errors"
)

// ErrDocumentNotFound is returned (wrapped) by sources when no document exists for a city.
var ErrDocumentNotFound = errors.New("recommendation document not found")

var cityKeyPattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// Load outcomes reported to Metrics.
const (
	OutcomeLoaded      = "loaded"
	OutcomeCacheHit    = "cache_hit"
	OutcomeInvalid     = "invalid_input"
	OutcomeNotFound    = "not_found"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeParseFailed = "parse_failed"
	OutcomeBadTime     = "timestamp_invalid"
)

// Service resolves a city key into display-ready view-models.
type Service interface {
	View(ctx context.Context, city string) (View, error)
}

// DocumentSource returns the raw data/<city>.json payload.
type DocumentSource interface {
	Fetch(ctx context.Context, city string) ([]byte, error)
}

// DocumentCache keeps recently fetched, already validated payloads.
type DocumentCache interface {
	Get(ctx context.Context, city string) ([]byte, bool, error)
	Set(ctx context.Context, city string, payload []byte, ttl time.Duration) error
}

// Metrics receives one observation per View call.
type Metrics interface {
	ObserveLoad(outcome string, elapsed time.Duration)
}

type service struct {
	cfg     Config
	source  DocumentSource
	cache   DocumentCache
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires up the activity view domain. cache may be nil.
func NewService(cfg Config, source DocumentSource, cache DocumentCache, metrics Metrics, logger *slog.Logger) Service {
	if cfg.TimestampPolicy == "" {
		cfg.TimestampPolicy = TimestampPlaceholder
	}
	return &service{
		cfg:     cfg,
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger.With("component", "activity.service"),
		now:     time.Now,
	}
}

func (s *service) View(ctx context.Context, city string) (View, error) {
	start := s.now()
	view, outcome, err := s.view(ctx, city)
	if s.metrics != nil {
		s.metrics.ObserveLoad(outcome, s.now().Sub(start))
	}
	return view, err
}

func (s *service) view(ctx context.Context, city string) (View, string, error) {
	if !ValidCityKey(city) {
		return View{}, OutcomeInvalid, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("city key %q is not a valid identifier", city), nil)
	}

	doc, cached, err := s.cachedDocument(ctx, city)
	if err != nil {
		s.logger.Warn("cached document unusable, refetching", "city", city, "error", err)
	}
	outcome := OutcomeCacheHit
	if !cached {
		outcome = OutcomeLoaded
		payload, err := s.source.Fetch(ctx, city)
		if err != nil {
			if errors.Is(err, ErrDocumentNotFound) {
				return View{}, OutcomeNotFound, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("no recommendations published for %s", city), err)
			}
			return View{}, OutcomeFetchFailed, apperrors.Wrap(apperrors.CodeFetchFailed, fmt.Sprintf("failed to load data for %s", city), err)
		}
		doc, err = DecodeDocument(payload)
		if err != nil {
			return View{}, OutcomeParseFailed, err
		}
		s.storeDocument(ctx, city, payload)
	}

	weather, err := BuildWeatherViewModel(doc)
	if err != nil {
		if s.cfg.TimestampPolicy == TimestampAbort {
			return View{}, OutcomeBadTime, err
		}
		s.logger.Warn("generated_at unparsable, using placeholder", "city", city, "generated_at", doc.GeneratedAt, "error", err)
		weather.LastUpdatedLabel = s.cfg.TimestampPlaceholder
	}

	view := View{
		City:       city,
		Weather:    weather,
		Activities: BuildActivityViewModels(doc),
	}
	s.logger.Info("activity view built", "city", city, "activities", len(view.Activities), "cached", cached)
	return view, outcome, nil
}

func (s *service) cachedDocument(ctx context.Context, city string) (RecommendationDocument, bool, error) {
	if s.cache == nil {
		return RecommendationDocument{}, false, nil
	}
	payload, ok, err := s.cache.Get(ctx, city)
	if err != nil || !ok {
		return RecommendationDocument{}, false, err
	}
	doc, err := DecodeDocument(payload)
	if err != nil {
		return RecommendationDocument{}, false, err
	}
	return doc, true, nil
}

func (s *service) storeDocument(ctx context.Context, city string, payload []byte) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, city, payload, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("document cache write failed", "city", city, "error", err)
	}
}

// ValidCityKey reports whether city is a lowercase snake_case key safe to use in a path.
func ValidCityKey(city string) bool {
	return cityKeyPattern.MatchString(city)
}
