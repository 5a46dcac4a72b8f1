package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse detalle de un campo que no pasó la validación.
type ErrorResponse struct {
	FailedField string `json:"failed_field"`
	Tag         string `json:"tag"`
	Value       string `json:"value"`
}

var validate = validator.New()

func init() {
	// Los decimal.Decimal se validan como float64 para poder usar gt, gte, lte.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	// Nombre JSON en los errores en lugar del nombre del campo Go.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// ValidateStruct valida data según sus tags `validate` y devuelve un error por campo.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "body", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Message resume los errores en una línea legible.
func Message(errs []*ErrorResponse) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Value != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", e.FailedField, e.Tag, e.Value))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.FailedField, e.Tag))
	}
	return strings.Join(parts, "; ")
}
