package lifecycle

import (
	"context"
	"fmt"
	"net/http"

	"k8s.io/klog/v2"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
	"cloudformation-dynatrace-resource-providers/internal/infrastructure/dynatrace"
)

// Create drives the create state machine:
// CHECK_ABSENCE -> CREATE_ISSUED -> STABILIZING -> DONE.
// The pre-create phases run while OperationCompleted is unset; once the
// create call succeeded, every further invocation is a stabilization read.
func (l *MonitorLifecycle) Create(ctx context.Context, req Request) models.ProgressEvent {
	if req.Callback.OperationCompleted {
		return l.stabilizeCreate(ctx, req)
	}
	return l.checkAbsenceAndCreate(ctx, req)
}

// checkAbsenceAndCreate verifies the monitor does not exist yet and issues
// the create call within the same invocation
func (l *MonitorLifecycle) checkAbsenceAndCreate(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback
	if cb.Retry > l.config.MaxRetries {
		return models.Failure(models.FaultNotStabilized,
			fmt.Sprintf("create not issued after %d attempts", l.config.MaxRetries))
	}

	// CHECK_ABSENCE: существующий ресурс - нарушение предусловия create
	existing, _, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID)
	if err == nil {
		id := req.Desired.EntityID
		if existing != nil && existing.EntityID != "" {
			id = existing.EntityID
		}
		return models.Failure(models.FaultAlreadyExists,
			fmt.Sprintf("monitor %s already exists", id))
	}

	// NotFound и BadRequest по несуществующему/пустому ID ожидаемы и
	// означают, что создавать безопасно
	if kind := Classify(err); kind != models.FaultNotFound && !dynatrace.IsStatus(err, http.StatusBadRequest) {
		if kind != models.FaultServiceInternalError {
			return models.Failure(kind, err.Error())
		}
		cb.Retry++
		klog.V(2).Infof("create: absence check hit transient fault, attempt %d: %v", cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	// CREATE_ISSUED
	created, err := l.gateway.CreateMonitor(ctx, req.Desired)
	if err != nil {
		kind, retryable := ClassifyForRetry(err, models.FaultNotFound, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		cb.Retry++
		klog.V(2).Infof("create: create call failed with %s, attempt %d: %v", kind, cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	model := req.Desired.Clone()
	model.MergeFrom(created)
	klog.Infof("create: monitor %s created, stabilizing", model.EntityID)

	next := models.CallbackState{Retry: 1, OperationCompleted: true}
	return models.InProgress(model, next, l.scheduler.DelaySeconds(next.Retry))
}

// stabilizeCreate re-reads the monitor until the configured number of
// consecutive successful reads confirms the create durably took effect
func (l *MonitorLifecycle) stabilizeCreate(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback
	if cb.Retry > l.config.MaxRetries {
		return models.Failure(models.FaultNotStabilized,
			fmt.Sprintf("monitor %s not stabilized after %d attempts", req.Desired.EntityID, l.config.MaxRetries))
	}

	remote, _, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID)
	if err != nil {
		kind, retryable := ClassifyForRetry(err, models.FaultNotFound, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		// Один неудачный read обнуляет накопленную консистентность
		cb.SuccessfulCalls = 0
		cb.Retry++
		klog.V(2).Infof("create: stabilization read failed with %s, attempt %d: %v", kind, cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	cb.SuccessfulCalls++
	if cb.SuccessfulCalls >= l.config.StabilizationThreshold {
		model := req.Desired.Clone()
		model.MergeFrom(remote)
		klog.Infof("create: monitor %s stabilized after %d consecutive reads", model.EntityID, cb.SuccessfulCalls)
		return models.Succeeded(model)
	}

	cb.Retry++
	klog.V(2).Infof("create: monitor %s read ok, %d/%d consecutive reads",
		req.Desired.EntityID, cb.SuccessfulCalls, l.config.StabilizationThreshold)
	return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
}
