package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/staybook/staybook-api/internal/validation"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the request body into dst.
// Problems with the body itself are reported as a *validation.FieldError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return &validation.FieldError{Field: "body", Message: "request body is required"}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &validation.FieldError{Field: "body", Message: "request body is not valid JSON"}
	case errors.As(err, &typeErr):
		return &validation.FieldError{Field: typeErr.Field, Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type)}
	case errors.As(err, &maxErr):
		return &validation.FieldError{Field: "body", Message: "request body is too large"}
	}
	return &validation.FieldError{Field: "body", Message: "request body is invalid"}
}

// firstNonEmpty picks the first provided value among a field's aliases.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
