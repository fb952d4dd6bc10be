package customvalidator

import "github.com/go-playground/validator/v10"

// EchoValidator подключает правила заявок к ctx.Validate в контроллерах.
// Ошибки возвращаются как validator.ValidationErrors, их разбирает utils.ErrorResponse.
type EchoValidator struct {
	v *validator.Validate
}

func NewEchoValidator() (*EchoValidator, error) {
	v := validator.New()
	if err := RegisterCustomValidations(v); err != nil {
		return nil, err
	}
	return &EchoValidator{v: v}, nil
}

func (ev *EchoValidator) Validate(i interface{}) error {
	return ev.v.Struct(i)
}
