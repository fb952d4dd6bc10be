package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"civiq/pkg/constants"
)

var phoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,19}$`)

// RegisterCustomValidations регистрирует правила предметной области в экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"request_status": isRequestStatus,
		"priority":       isPriority,
		"role":           isRole,
		"phone":          isPhone,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isRequestStatus(fl validator.FieldLevel) bool {
	return constants.RequestStatus(fl.Field().String()).IsValid()
}

func isPriority(fl validator.FieldLevel) bool {
	return constants.Priority(fl.Field().String()).IsValid()
}

func isRole(fl validator.FieldLevel) bool {
	return constants.Role(fl.Field().String()).IsValid()
}

func isPhone(fl validator.FieldLevel) bool {
	return phoneRegexp.MatchString(fl.Field().String())
}
