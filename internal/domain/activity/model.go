package activity

import "time"

// RecommendationDocument is the per-city payload published as data/<city>.json.
type RecommendationDocument struct {
	City            string            `json:"city"`
	GeneratedAt     string            `json:"generated_at"`
	Weather         WeatherPayload    `json:"weather"`
	Context         ContextPayload    `json:"context"`
	Recommendations []ActivityPayload `json:"recommendations"`
}

// WeatherPayload describes current conditions for the city.
type WeatherPayload struct {
	Temperature  float64 `json:"temperature"`
	Description  string  `json:"description"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	Icon         string  `json:"icon"`
	Condition    string  `json:"condition,omitempty"`
}

// ContextPayload carries the time labels the recommendations were scored for.
type ContextPayload struct {
	TimeOfDay string `json:"time_of_day"`
	DayType   string `json:"day_type"`
}

// ActivityPayload is a single pre-scored recommendation.
type ActivityPayload struct {
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	Description string   `json:"description"`
	Reasons     []string `json:"reasons"`
}

// Tier buckets an activity score for display.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// WeatherView is the display-ready weather card.
type WeatherView struct {
	CityDisplay      string `json:"cityDisplay"`
	TemperatureLabel string `json:"temperatureLabel"`
	ConditionLabel   string `json:"conditionLabel"`
	WindLabel        string `json:"windLabel"`
	Icon             string `json:"icon"`
	TimeOfDayLabel   string `json:"timeOfDayLabel"`
	DayTypeLabel     string `json:"dayTypeLabel"`
	LastUpdatedLabel string `json:"lastUpdatedLabel"`
}

// ActivityView is the display-ready activity card.
type ActivityView struct {
	DisplayName string   `json:"displayName"`
	ScoreLabel  string   `json:"scoreLabel"`
	Tier        Tier     `json:"tier"`
	Description string   `json:"description"`
	Reasons     []string `json:"reasons"`
}

// View bundles everything a renderer needs for one city.
type View struct {
	City       string         `json:"city"`
	Weather    WeatherView    `json:"weather"`
	Activities []ActivityView `json:"activities"`
}

// LoadState is the coarse status shown next to the city selector.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
	StateError   LoadState = "error"
)

// State is an immutable snapshot of the selection session.
type State struct {
	State        LoadState  `json:"state"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	Selection    string     `json:"selection"`
	LoadID       string     `json:"loadId,omitempty"`
	View         *View      `json:"view,omitempty"`
	LoadedAt     *time.Time `json:"loadedAt,omitempty"`
}

// StalePolicy decides what happens when an older load finishes after a newer selection.
type StalePolicy string

const (
	// IgnoreStale drops completions from loads superseded by a newer selection.
	IgnoreStale StalePolicy = "ignore_stale"
	// LastWriteWins applies every completion in the order it finishes.
	LastWriteWins StalePolicy = "last_write_wins"
)

// TimestampPolicy decides how a malformed generated_at is handled.
type TimestampPolicy string

const (
	TimestampPlaceholder TimestampPolicy = "placeholder"
	TimestampAbort       TimestampPolicy = "abort"
)

// Config wires runtime knobs for the activity domain.
type Config struct {
	StalePolicy          StalePolicy
	TimestampPolicy      TimestampPolicy
	TimestampPlaceholder string
	CacheTTL             time.Duration
	// SessionIdleTTL is how long an untouched client session is kept. Zero keeps sessions forever.
	SessionIdleTTL time.Duration
}
