// Package validators decodes and validates request input.
package validators

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/greenbasket/greenbasket-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSONBody parses the request body into dst, rejecting unknown
// fields, then runs the struct validation tags.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(errors.CodeValidation, err, "malformed request body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New(errors.CodeValidation, "request body must contain a single JSON object")
	}

	return Struct(dst)
}

// Struct validates dst's validation tags and renders field failures as
// error details.
func Struct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !stderrors.As(err, &invalid) {
		return errors.Wrap(errors.CodeInternal, err, "validate request")
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fieldName(fe)] = failureMessage(fe)
	}
	return errors.New(errors.CodeValidation, "validation failed").WithDetails(fields)
}

func fieldName(fe validator.FieldError) string {
	// Strip the struct name prefix, keep the nested path.
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return fe.Field()
}

func failureMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
