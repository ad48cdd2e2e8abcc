// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Package validation checks request and model-output structs with
// go-playground/validator. One validator is shared process wide; it knows the
// "sessionid" tag and reports fields by their JSON names so messages match
// what the client actually sent.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/studybuddy/internal/focus"
)

const errorCode = "VALIDATION_ERROR"

var shared = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	// Fails only for an empty tag or nil func.
	_ = v.RegisterValidation("sessionid", func(fl validator.FieldLevel) bool {
		return focus.ValidSessionID(fl.Field().String())
	})
	return v
})

// GetValidator returns the shared validator. Struct metadata is cached on it,
// so callers should not build their own.
func GetValidator() *validator.Validate {
	return shared()
}

// ValidationError is one failed rule on one field.
type ValidationError struct {
	field, tag, param, message string
}

func (e *ValidationError) Field() string { return e.field }
func (e *ValidationError) Tag() string { return e.tag }
func (e *ValidationError) Param() string { return e.param }
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects every failed rule of one struct.
type RequestValidationError struct {
	errors []ValidationError
}

func (ve *RequestValidationError) Errors() []ValidationError { return ve.errors }

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	return strings.Join(ve.messages(), "; ")
}

func (ve *RequestValidationError) messages() []string {
	out := make([]string, len(ve.errors))
	for i := range ve.errors {
		out[i] = ve.errors[i].message
	}
	return out
}

// APIError has the shape of models.APIError; models cannot be imported here.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError renders the failures for the JSON error envelope. A single
// failure is flattened into field/tag details; several are listed.
func (ve *RequestValidationError) ToAPIError() *APIError {
	apiErr := &APIError{Code: errorCode, Message: "Validation failed"}

	switch len(ve.errors) {
	case 0:
	case 1:
		only := ve.errors[0]
		apiErr.Message = only.message
		apiErr.Details = map[string]interface{}{"field": only.field, "tag": only.tag}
	default:
		fields := make([]map[string]interface{}, 0, len(ve.errors))
		for _, e := range ve.errors {
			fields = append(fields, map[string]interface{}{
				"field":   e.field,
				"tag":     e.tag,
				"message": e.message,
			})
		}
		apiErr.Message = strings.Join(ve.messages(), "; ")
		apiErr.Details = map[string]interface{}{"fields": fields}
	}
	return apiErr
}

// ValidateStruct runs the shared validator over s. It returns nil when every
// rule holds.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: s was not a struct.
		return &RequestValidationError{errors: []ValidationError{
			{field: "unknown", tag: "unknown", message: err.Error()},
		}}
	}

	out := &RequestValidationError{errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.errors = append(out.errors, ValidationError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			message: describe(fe),
		})
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// describe turns a failed rule into a sentence about the field.
func describe(fe validator.FieldError) string {
	name, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "sessionid":
		return name + " must be 1-64 letters, digits, '-' or '_'"
	case "base64":
		return name + " must be valid base64 encoded"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", name, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", name, param, unitOf(fe.Kind()))
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", name, param, unitOf(fe.Kind()))
	case "len":
		return fmt.Sprintf("%s must be exactly %s%s", name, param, unitOf(fe.Kind()))
	}
	return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
}

func unitOf(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}
