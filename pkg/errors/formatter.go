package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// bodyField names errors that concern the request body as a whole.
const bodyField = "body"

func msgForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email", "contains":
		return "Valid email is required"
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", param)
	case "min":
		return fmt.Sprintf("Must be at least %s characters", param)
	default:
		return "Invalid value"
	}
}

func getJSONFieldName(structType reflect.Type, fieldName string) string {
	if structType == nil {
		return fieldName
	}

	field, found := structType.FieldByName(fieldName)
	if !found {
		return fieldName
	}

	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fieldName
	}
	return name
}

// FormatValidationErrors turns a bind failure into per-field messages. It
// returns nil for errors that carry no field information.
func FormatValidationErrors(err error, model interface{}) []ValidationErrorResponse {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return []ValidationErrorResponse{{Field: bodyField, Message: "Request body is required"}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []ValidationErrorResponse{{Field: bodyField, Message: "Request body is not valid JSON"}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
		}}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}

	out := make([]ValidationErrorResponse, len(validationErrors))
	for i, fieldError := range validationErrors {
		out[i] = ValidationErrorResponse{
			Field:   getJSONFieldName(structType, fieldError.Field()),
			Message: msgForTag(fieldError.Tag(), fieldError.Param()),
		}
	}
	return out
}
