package lifecycle

import (
	"net/http"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
	"cloudformation-dynatrace-resource-providers/internal/infrastructure/dynatrace"
)

// Classify maps a failed remote call onto a semantic fault kind. Anything
// that is not a structured API fault is unclassified and therefore terminal.
func Classify(err error) models.FaultKind {
	apiErr, ok := dynatrace.AsAPIError(err)
	if !ok {
		return models.FaultOther
	}

	switch {
	case apiErr.Status == http.StatusNotFound:
		return models.FaultNotFound
	case apiErr.Status == http.StatusConflict,
		apiErr.Code == dynatrace.CodeConstraintViolation:
		return models.FaultAlreadyExists
	case apiErr.Status >= http.StatusInternalServerError,
		apiErr.Code == dynatrace.CodeInternalServerError,
		apiErr.Code == dynatrace.CodeServerError:
		return models.FaultServiceInternalError
	default:
		return models.FaultOther
	}
}

// ClassifyForRetry classifies err and decides, against the allow-list of the
// current state transition, whether the caller should back off and retry.
// Kinds off the allow-list always propagate as terminal failures.
func ClassifyForRetry(err error, retryable ...models.FaultKind) (models.FaultKind, bool) {
	kind := Classify(err)
	for _, allowed := range retryable {
		if kind == allowed {
			return kind, true
		}
	}
	return kind, false
}
