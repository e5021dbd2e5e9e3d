package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"familycal/internal/application/recurrence"
)

var (
	// Validate - singleton экземпляр валидатора для переиспользования
	Validate *validator.Validate

	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func init() {
	Validate = validator.New()

	// Регистрируем кастомные валидаторы
	_ = Validate.RegisterValidation("rfc3339", validateRFC3339)
	_ = Validate.RegisterValidation("date_or_rfc3339", validateDateOrRFC3339)
	_ = Validate.RegisterValidation("rrule", validateRRule)
	_ = Validate.RegisterValidation("hexcolor_short", validateHexColor)
}

// validateRFC3339 проверяет, что строка является валидной RFC3339 датой
func validateRFC3339(fl validator.FieldLevel) bool {
	dateStr := fl.Field().String()
	if dateStr == "" {
		return false
	}
	_, err := time.Parse(time.RFC3339, dateStr)
	return err == nil
}

// validateDateOrRFC3339 дата 2006-01-02 или RFC3339
func validateDateOrRFC3339(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// validateRRule строка разбирается как правило повторения
func validateRRule(fl validator.FieldLevel) bool {
	_, err := recurrence.Parse(fl.Field().String())
	return err == nil
}

// validateHexColor #rgb или #rrggbb
func validateHexColor(fl validator.FieldLevel) bool {
	return hexColor.MatchString(fl.Field().String())
}
