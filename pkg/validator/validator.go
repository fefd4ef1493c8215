package validator

import (
	"github.com/go-playground/validator/v10"
)

// EchoValidator adapts go-playground/validator to echo.Validator.
type EchoValidator struct {
	validate *validator.Validate
}

func New() *EchoValidator {
	return &EchoValidator{validate: validator.New()}
}

func (v *EchoValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// Fields flattens a validation error into field -> failed tag.
func Fields(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
