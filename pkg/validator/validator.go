// Package validator envuelve go-playground/validator para validar los DTO de
// entrada por tags antes de llegar a los casos de uso.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// FieldError describe una violación de tag sobre un campo del DTO.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

var validate = validator.New()

// ValidateStruct valida los tags `validate` del struct y devuelve la lista de
// violaciones; nil si el struct es válido.
func ValidateStruct(data interface{}) []*FieldError {
	var errs []*FieldError
	if err := validate.Struct(data); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			errs = append(errs, &FieldError{
				Field: fe.StructNamespace(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
	}
	return errs
}
