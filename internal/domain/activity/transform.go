package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/yanqian/activity-for-you/pkg/errors"
)

// DefaultWeatherIcon is shown for any code missing from the icon table.
const DefaultWeatherIcon = "🌤️"

const (
	highScoreThreshold   = 70
	mediumScoreThreshold = 50
)

// TimestampLayout renders generated_at as e.g. "March 15, 2024, 14:30:00".
const TimestampLayout = "January 2, 2006, 15:04:05"

var weatherIcons = map[string]string{
	"01d": "☀️",
	"01n": "🌙",
	"02d": "⛅",
	"02n": "☁️",
	"03d": "☁️",
	"03n": "☁️",
	"04d": "☁️",
	"04n": "☁️",
	"09d": "🌧️",
	"09n": "🌧️",
	"10d": "🌧️",
	"10n": "🌧️",
	"11d": "⛈️",
	"11n": "⛈️",
	"13d": "❄️",
	"13n": "❄️",
	"50d": "🌫️",
	"50n": "🌫️",
}

// Zone-less layouts are read as UTC. Fractional seconds are accepted by all of them.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MapWeatherIcon resolves an OpenWeather icon code to a glyph.
func MapWeatherIcon(code string) string {
	if glyph, ok := weatherIcons[code]; ok {
		return glyph
	}
	return DefaultWeatherIcon
}

// FormatTokenName turns "new_york" into "New York". Only the first rune of each
// token is touched; empty tokens survive as empty strings.
func FormatTokenName(raw string) string {
	if raw == "" {
		return ""
	}
	tokens := strings.Split(raw, "_")
	for i, token := range tokens {
		tokens[i] = upperFirst(token)
	}
	return strings.Join(tokens, " ")
}

func upperFirst(token string) string {
	r, size := utf8.DecodeRuneInString(token)
	if size == 0 || r == utf8.RuneError {
		return token
	}
	return string(unicode.ToUpper(r)) + token[size:]
}

// ClassifyScore maps a score to its display tier. Boundaries belong to the higher tier.
func ClassifyScore(score float64) Tier {
	switch {
	case score >= highScoreThreshold:
		return TierHigh
	case score >= mediumScoreThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// FormatTimestamp renders an ISO-8601 timestamp in UTC using TimestampLayout.
func FormatTimestamp(iso string) (string, error) {
	ts, err := parseTimestamp(iso)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeTimestampInvalid, fmt.Sprintf("cannot parse timestamp %q", iso), err)
	}
	return ts.UTC().Format(TimestampLayout), nil
}

func parseTimestamp(iso string) (time.Time, error) {
	value := strings.TrimSpace(iso)
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// BuildWeatherViewModel derives the weather card. When generated_at cannot be
// parsed the returned view is complete except for LastUpdatedLabel, and the
// timestamp error is returned alongside it.
func BuildWeatherViewModel(doc RecommendationDocument) (WeatherView, error) {
	view := WeatherView{
		CityDisplay:      FormatTokenName(doc.City),
		TemperatureLabel: formatNumber(doc.Weather.Temperature) + "°C",
		ConditionLabel:   doc.Weather.Description,
		WindLabel:        "Wind: " + formatNumber(doc.Weather.WindSpeedKmh) + " km/h",
		Icon:             MapWeatherIcon(doc.Weather.Icon),
		TimeOfDayLabel:   doc.Context.TimeOfDay,
		DayTypeLabel:     doc.Context.DayType,
	}
	updated, err := FormatTimestamp(doc.GeneratedAt)
	if err != nil {
		return view, err
	}
	view.LastUpdatedLabel = updated + " UTC"
	return view, nil
}

// BuildActivityViewModels derives one card per recommendation, in document order.
func BuildActivityViewModels(doc RecommendationDocument) []ActivityView {
	views := make([]ActivityView, 0, len(doc.Recommendations))
	for _, rec := range doc.Recommendations {
		reasons := make([]string, len(rec.Reasons))
		copy(reasons, rec.Reasons)
		views = append(views, ActivityView{
			DisplayName: FormatTokenName(rec.Name),
			ScoreLabel:  "Score: " + formatNumber(rec.Score) + "/100",
			Tier:        ClassifyScore(rec.Score),
			Description: rec.Description,
			Reasons:     reasons,
		})
	}
	return views
}

// formatNumber prints the shortest decimal form: 8, 12.5, -3.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
