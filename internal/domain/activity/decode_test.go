package activity

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/activity-for-you/pkg/errors"
)

const parisPayload = `{
  "city": "paris",
  "generated_at": "2024-03-15T14:30:00.000123Z",
  "weather": {
    "temperature": 8,
    "condition": "cloudy",
    "description": "Mostly cloudy",
    "wind_speed_kmh": 12.0,
    "icon": "02d"
  },
  "context": {"time_of_day": "afternoon", "day_type": "weekend"},
  "recommendations": [
    {"name": "restaurant", "score": 90, "description": "Dine at a local restaurant", "reasons": ["Perfect weekend activity"]},
    {"name": "park_walk", "score": 55, "description": "Stroll through a scenic park", "reasons": ["Cloudy weather slightly reduces outdoor appeal", "Cool temperature (8°C)"]},
    {"name": "beach", "score": 30, "description": "Relax and swim at the beach", "reasons": []}
  ]
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(parisPayload))
	require.NoError(t, err)
	require.Equal(t, "paris", doc.City)
	require.Equal(t, 8.0, doc.Weather.Temperature)
	require.Equal(t, "02d", doc.Weather.Icon)
	require.Equal(t, "cloudy", doc.Weather.Condition)
	require.Equal(t, "weekend", doc.Context.DayType)
	require.Len(t, doc.Recommendations, 3)
	require.Equal(t, "restaurant", doc.Recommendations[0].Name)
	require.Equal(t, "beach", doc.Recommendations[2].Name)
	require.Empty(t, doc.Recommendations[2].Reasons)
}

func TestDecodeDocumentAllowsZeroValuesAndMissingIcon(t *testing.T) {
	payload := `{"city":"oslo","generated_at":"2024-01-01T00:00:00Z",
		"weather":{"temperature":0,"description":"","wind_speed_kmh":0},
		"context":{"time_of_day":"morning","day_type":"weekday"},
		"recommendations":[]}`
	doc, err := DecodeDocument([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, 0.0, doc.Weather.Temperature)
	require.Empty(t, doc.Weather.Icon)
	require.NotNil(t, doc.Recommendations)
	require.Empty(t, doc.Recommendations)
}

func TestDecodeDocumentRejectsInvalidJSON(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"city": "paris",`))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeParseFailed))
}

func TestDecodeDocumentReportsMissingFields(t *testing.T) {
	payload := `{"city":"paris","generated_at":"2024-01-01T00:00:00Z",
		"weather":{"description":"Clear","wind_speed_kmh":3},
		"context":{"time_of_day":"morning","day_type":"weekday"},
		"recommendations":[{"name":"cinema","score":70,"description":"Watch a movie"}]}`
	_, err := DecodeDocument([]byte(payload))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeParseFailed))
	require.Contains(t, err.Error(), "weather.temperature: required")
	require.Contains(t, err.Error(), "recommendations[0].reasons: required")
}

func TestDecodeDocumentRequiresRecommendations(t *testing.T) {
	payload := `{"city":"paris","generated_at":"2024-01-01T00:00:00Z",
		"weather":{"temperature":1,"description":"Clear","wind_speed_kmh":3},
		"context":{"time_of_day":"morning","day_type":"weekday"}}`
	_, err := DecodeDocument([]byte(payload))
	require.Error(t, err)
	require.Contains(t, err.Error(), "recommendations: required")
}

func TestDecodeDocumentRejectsNegativeWind(t *testing.T) {
	payload := `{"city":"paris","generated_at":"2024-01-01T00:00:00Z",
		"weather":{"temperature":1,"description":"Clear","wind_speed_kmh":-1},
		"context":{"time_of_day":"morning","day_type":"weekday"},
		"recommendations":[]}`
	_, err := DecodeDocument([]byte(payload))
	require.Error(t, err)
	require.Contains(t, err.Error(), "weather.wind_speed_kmh: gte")
}
