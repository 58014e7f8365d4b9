package dynatrace

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Vendor error codes surfaced in the API error envelope. The backend is not
// exhaustive about these, so classification also falls back to HTTP status.
const (
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeServerError         = "SERVER_ERROR"
)

// APIError is a failed Dynatrace API call: the HTTP status, the vendor's
// semantic error code and its human-readable message
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dynatrace api error: status=%d code=%s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("dynatrace api error: status=%d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err down to an APIError if one is in the chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given HTTP status
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// errorEnvelope соответствует формату ошибок Dynatrace API
type errorEnvelope struct {
	Error struct {
		Code                 int    `json:"code"`
		Message              string `json:"message"`
		ConstraintViolations []struct {
			Message string `json:"message"`
			Path    string `json:"path"`
		} `json:"constraintViolations"`
	} `json:"error"`
}

// decodeAPIError строит APIError из ответа бэкенда
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: http.StatusText(status),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.ConstraintViolations) > 0 {
			apiErr.Code = CodeConstraintViolation
			apiErr.Message = fmt.Sprintf("%s: %s (%s)",
				envelope.Error.Message,
				envelope.Error.ConstraintViolations[0].Message,
				envelope.Error.ConstraintViolations[0].Path)
		}
	}

	if apiErr.Code == "" && status >= http.StatusInternalServerError {
		apiErr.Code = CodeServerError
	}

	return apiErr
}
