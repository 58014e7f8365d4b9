package models

// OperationStatus is the host-visible status of one handler invocation
type OperationStatus string

const (
	StatusInProgress OperationStatus = "IN_PROGRESS"
	StatusSuccess    OperationStatus = "SUCCESS"
	StatusFailed     OperationStatus = "FAILED"
)

// FaultKind classifies a failed remote call or an exhausted retry budget
type FaultKind string

const (
	// FaultNotFound - ресурс отсутствует на бэкенде (часто ожидаемо)
	FaultNotFound FaultKind = "NotFound"
	// FaultAlreadyExists - нарушение предусловия create
	FaultAlreadyExists FaultKind = "AlreadyExists"
	// FaultServiceInternalError - временная ошибка бэкенда, retryable по allow-list
	FaultServiceInternalError FaultKind = "ServiceInternalError"
	// FaultNotStabilized - бюджет повторов исчерпан до достижения цели
	FaultNotStabilized FaultKind = "NotStabilized"
	// FaultOther - неклассифицированная ошибка, всегда терминальная
	FaultOther FaultKind = "Other"
)

// ProgressEvent is the tagged outcome of a single handler invocation.
// StatusInProgress is the only non-terminal status and always carries the
// next callback state plus an advisory re-invocation delay.
type ProgressEvent struct {
	Status       OperationStatus    `json:"status"`
	Fault        FaultKind          `json:"errorCode,omitempty"`
	Message      string             `json:"message,omitempty"`
	Model        *SyntheticMonitor  `json:"resourceModel,omitempty"`
	Models       []SyntheticMonitor `json:"resourceModels,omitempty"`
	Callback     CallbackState      `json:"callbackContext,omitempty"`
	DelaySeconds int64              `json:"callbackDelaySeconds,omitempty"`
}

// InProgress schedules a re-invocation with the given state after delaySeconds
func InProgress(model *SyntheticMonitor, next CallbackState, delaySeconds int64) ProgressEvent {
	return ProgressEvent{
		Status:       StatusInProgress,
		Model:        model,
		Callback:     next,
		DelaySeconds: delaySeconds,
	}
}

// Succeeded terminates the operation with the fully merged observed state
func Succeeded(model *SyntheticMonitor) ProgressEvent {
	return ProgressEvent{
		Status: StatusSuccess,
		Model:  model,
	}
}

// Listed terminates a list enumeration with the collected summaries
func Listed(monitors []SyntheticMonitor) ProgressEvent {
	return ProgressEvent{
		Status: StatusSuccess,
		Models: monitors,
	}
}

// Failure terminates the operation with a classified fault and an upstream
// message for the operator
func Failure(kind FaultKind, message string) ProgressEvent {
	return ProgressEvent{
		Status:  StatusFailed,
		Fault:   kind,
		Message: message,
	}
}

// Terminal reports whether no further invocations are expected
func (e ProgressEvent) Terminal() bool {
	return e.Status != StatusInProgress
}
