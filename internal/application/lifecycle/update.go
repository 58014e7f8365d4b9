package lifecycle

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

// Update drives the update state machine:
// CHECK_EXISTENCE -> UPDATE_ISSUED -> VERIFY_TIMING -> DONE.
// Existence is assumed invariant during the operation, so only transient
// backend faults are retried; everything else is terminal.
func (l *MonitorLifecycle) Update(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback
	if cb.Retry > l.config.MaxRetries {
		return models.Failure(models.FaultNotStabilized,
			fmt.Sprintf("update of monitor %s not confirmed after %d attempts", req.Desired.EntityID, l.config.MaxRetries))
	}

	if !cb.OperationCompleted && cb.ServerTiming == 0 {
		return l.checkExistenceAndUpdate(ctx, req)
	}
	return l.verifyTiming(ctx, req)
}

// checkExistenceAndUpdate confirms the monitor is still there and issues the
// update call within the same invocation
func (l *MonitorLifecycle) checkExistenceAndUpdate(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback

	if _, _, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID); err != nil {
		kind, retryable := ClassifyForRetry(err, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		cb.Retry++
		klog.V(2).Infof("update: existence check hit transient fault, attempt %d: %v", cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	updated, err := l.gateway.UpdateMonitor(ctx, req.Desired.EntityID, req.Desired)
	if err != nil {
		kind, retryable := ClassifyForRetry(err, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		cb.Retry++
		klog.V(2).Infof("update: update call failed with %s, attempt %d: %v", kind, cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	model := req.Desired.Clone()
	model.MergeFrom(updated)
	klog.Infof("update: monitor %s updated, verifying propagation", model.EntityID)

	// Немедленный повторный read вернул бы данные до обновления, поэтому
	// верификация откладывается на backoff-интервал
	next := models.CallbackState{Retry: 1, OperationCompleted: true}
	return models.InProgress(model, next, l.scheduler.DelaySeconds(next.Retry))
}

// verifyTiming re-reads the monitor and compares the backend's timing marker
// with the previously observed one to detect reads still serving stale data
func (l *MonitorLifecycle) verifyTiming(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback

	remote, timing, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID)
	if err != nil {
		if cb.ServerTiming == 0 {
			// Ни одного маркера не наблюдалось - обновление, по-видимому,
			// так и не дошло до бэкенда
			return models.Failure(models.FaultNotStabilized,
				fmt.Sprintf("update of monitor %s did not propagate: %v", req.Desired.EntityID, err))
		}
		kind, retryable := ClassifyForRetry(err, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		cb.Retry++
		klog.V(2).Infof("update: verification read failed with %s, attempt %d: %v", kind, cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	if cb.ServerTiming != 0 && timing <= cb.ServerTiming {
		// Бэкенд все еще отдает данные до обновления; повторная инвокация
		// без дополнительной задержки - минимальный интервал гарантирует хост
		cb.ServerTiming = timing
		cb.Retry++
		klog.V(2).Infof("update: monitor %s timing marker %0.1f has not advanced past %0.1f, attempt %d",
			req.Desired.EntityID, timing, req.Callback.ServerTiming, cb.Retry)
		return models.InProgress(req.Desired, cb, 0)
	}

	model := req.Desired.Clone()
	model.MergeFrom(remote)
	klog.Infof("update: monitor %s update confirmed", model.EntityID)
	return models.Succeeded(model)
}
