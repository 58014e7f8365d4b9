package models

// CallbackState is the serializable state threaded between invocations of one
// logical lifecycle operation. The host persists it verbatim and re-delivers
// it on the next invocation; nothing else survives across invocations.
//
// Invariants: Retry never decreases and OperationCompleted never reverts to
// false once set. A zero Retry marks the first invocation of an operation.
type CallbackState struct {
	// Retry counts stabilization attempts so far
	Retry int `json:"retry,omitempty"`

	// OperationCompleted is set once the mutating call succeeded and only
	// final verification remains
	OperationCompleted bool `json:"operationCompleted,omitempty"`

	// SuccessfulCalls counts consecutive successful existence checks during
	// create stabilization; a single failed read resets it to zero
	SuccessfulCalls int `json:"successfulCalls,omitempty"`

	// ServerTiming is the last observed backend timing marker, used by update
	// verification to detect reads that still return pre-update data
	ServerTiming float64 `json:"serverTiming,omitempty"`
}

// Started reports whether this state belongs to a re-invocation rather than
// the first call of the operation
func (s CallbackState) Started() bool {
	return s.Retry > 0 || s.OperationCompleted || s.SuccessfulCalls > 0 || s.ServerTiming > 0
}
