package validation

import (
	"hotelbooking/util/validate"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validate.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

// Fields turns a Validate error into the "errors" map of a 400 response.
func Fields(err error) map[string]string {
	if f := validate.Fields(err); f != nil {
		return f
	}
	return map[string]string{"body": err.Error()}
}
