package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/activity-for-you/pkg/errors"
)

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Pointer fields let the validator tell an absent key from a zero value.
type documentWire struct {
	City            *string        `json:"city" validate:"required"`
	GeneratedAt     *string        `json:"generated_at" validate:"required"`
	Weather         *weatherWire   `json:"weather" validate:"required"`
	Context         *contextWire   `json:"context" validate:"required"`
	Recommendations []activityWire `json:"recommendations" validate:"required,dive"`
}

type weatherWire struct {
	Temperature  *float64 `json:"temperature" validate:"required"`
	Description  *string  `json:"description" validate:"required"`
	WindSpeedKmh *float64 `json:"wind_speed_kmh" validate:"required,gte=0"`
	Icon         string   `json:"icon"`
	Condition    string   `json:"condition"`
}

type contextWire struct {
	TimeOfDay *string `json:"time_of_day" validate:"required"`
	DayType   *string `json:"day_type" validate:"required"`
}

type activityWire struct {
	Name        *string  `json:"name" validate:"required"`
	Score       *float64 `json:"score" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Reasons     []string `json:"reasons" validate:"required"`
}

// DecodeDocument parses and validates a raw recommendation payload. Unknown
// fields are ignored; a missing icon falls through to the default glyph later.
func DecodeDocument(data []byte) (RecommendationDocument, error) {
	var wire documentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return RecommendationDocument{}, apperrors.Wrap(apperrors.CodeParseFailed, "payload is not valid JSON", err)
	}
	if err := payloadValidator.Struct(wire); err != nil {
		return RecommendationDocument{}, apperrors.Wrap(apperrors.CodeParseFailed, "payload does not match the document schema", describeValidation(err))
	}
	return wire.toDocument(), nil
}

func (w documentWire) toDocument() RecommendationDocument {
	doc := RecommendationDocument{
		City:        *w.City,
		GeneratedAt: *w.GeneratedAt,
		Weather: WeatherPayload{
			Temperature:  *w.Weather.Temperature,
			Description:  *w.Weather.Description,
			WindSpeedKmh: *w.Weather.WindSpeedKmh,
			Icon:         w.Weather.Icon,
			Condition:    w.Weather.Condition,
		},
		Context: ContextPayload{
			TimeOfDay: *w.Context.TimeOfDay,
			DayType:   *w.Context.DayType,
		},
		Recommendations: make([]ActivityPayload, 0, len(w.Recommendations)),
	}
	for _, rec := range w.Recommendations {
		doc.Recommendations = append(doc.Recommendations, ActivityPayload{
			Name:        *rec.Name,
			Score:       *rec.Score,
			Description: *rec.Description,
			Reasons:     rec.Reasons,
		})
	}
	return doc
}

// describeValidation flattens validator output into "json.path: rule" pairs.
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s: %s", jsonPath(fe.Namespace()), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

func jsonPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}
