package testutil

import (
	"net/http"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
	"cloudformation-dynatrace-resource-providers/internal/infrastructure/dynatrace"
)

// TestEntityID is the entity ID fixtures use for an existing monitor
const TestEntityID = "SYNTHETIC_TEST-0000000000000001"

// CreateTestMonitor returns a browser monitor with sensible defaults
func CreateTestMonitor(entityID string) *models.SyntheticMonitor {
	return &models.SyntheticMonitor{
		EntityID:     entityID,
		Name:         "checkout-flow",
		Type:         models.MonitorTypeBrowser,
		FrequencyMin: 15,
		Enabled:      true,
		Locations:    []string{"GEOLOCATION-1"},
		Tags: []models.TagWithSourceInfo{
			{Key: "team", Value: "observability"},
		},
	}
}

// NotFoundErr returns a 404 fault the way the gateway surfaces it
func NotFoundErr() error {
	return &dynatrace.APIError{
		Status:  http.StatusNotFound,
		Message: "monitor not found",
	}
}

// BadRequestErr returns a malformed-identity 400 fault
func BadRequestErr() error {
	return &dynatrace.APIError{
		Status:  http.StatusBadRequest,
		Message: "invalid monitor id",
	}
}

// ConflictErr returns a duplicate-resource 409 fault
func ConflictErr() error {
	return &dynatrace.APIError{
		Status:  http.StatusConflict,
		Message: "monitor already exists",
	}
}

// ServerErr returns a transient 503 fault
func ServerErr() error {
	return &dynatrace.APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    dynatrace.CodeServerError,
		Message: "backend unavailable",
	}
}

// ForbiddenErr returns an unclassifiable 403 fault
func ForbiddenErr() error {
	return &dynatrace.APIError{
		Status:  http.StatusForbidden,
		Message: "token misses required scope",
	}
}
