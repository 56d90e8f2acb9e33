package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/voltmap/chargepoint/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("station_status", validateStationStatus); err != nil {
		panic(fmt.Sprintf("failed to register station_status validator: %v", err))
	}
}

// validateStationStatus validates that a string is a valid StationStatus enum value
func validateStationStatus(fl validator.FieldLevel) bool {
	switch models.StationStatus(fl.Field().String()) {
	case models.StationStatusActive, models.StationStatusInactive:
		return true
	default:
		return false
	}
}

// ValidateStationStatus validates a station status value outside of struct tags
func ValidateStationStatus(status string) error {
	switch models.StationStatus(status) {
	case models.StationStatusActive, models.StationStatusInactive:
		return nil
	default:
		return fmt.Errorf("invalid status: must be one of [Active, Inactive]")
	}
}

// SanitizeText trims whitespace and strips control characters from free-form
// text fields like station names.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	sanitized.Grow(len(text))
	for _, r := range text {
		if !unicode.IsControl(r) {
			sanitized.WriteRune(r)
		}
	}
	return sanitized.String()
}
