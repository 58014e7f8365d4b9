package lifecycle

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

// Delete drives the delete state machine:
// CHECK_EXISTENCE -> DELETE_ISSUED -> VERIFY_ABSENCE -> DONE.
// A NotFound during the delete call means the monitor is already gone and
// falls through to verification instead of failing the operation.
func (l *MonitorLifecycle) Delete(ctx context.Context, req Request) models.ProgressEvent {
	if req.Callback.OperationCompleted {
		return l.verifyAbsence(ctx, req)
	}
	return l.checkExistenceAndDelete(ctx, req)
}

// checkExistenceAndDelete confirms the monitor exists and issues the delete
// call within the same invocation
func (l *MonitorLifecycle) checkExistenceAndDelete(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback
	if cb.Retry > l.config.MaxRetries {
		return models.Failure(models.FaultNotStabilized,
			fmt.Sprintf("delete of monitor %s not issued after %d attempts", req.Desired.EntityID, l.config.MaxRetries))
	}

	if _, _, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID); err != nil {
		kind, retryable := ClassifyForRetry(err, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		cb.Retry++
		klog.V(2).Infof("delete: existence check hit transient fault, attempt %d: %v", cb.Retry, err)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	if err := l.gateway.DeleteMonitor(ctx, req.Desired.EntityID); err != nil {
		kind, retryable := ClassifyForRetry(err, models.FaultNotFound, models.FaultServiceInternalError)
		if !retryable {
			return models.Failure(kind, err.Error())
		}
		// NotFound означает "уже удален": проваливаемся в верификацию,
		// транзиентные ошибки туда же - повторный delete не нужен
		cb.Retry++
		cb.OperationCompleted = kind == models.FaultNotFound
		if !cb.OperationCompleted {
			klog.V(2).Infof("delete: delete call failed with %s, attempt %d: %v", kind, cb.Retry, err)
			return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
		}
		klog.V(2).Infof("delete: monitor %s already gone, verifying absence", req.Desired.EntityID)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	klog.Infof("delete: monitor %s delete issued, verifying absence", req.Desired.EntityID)
	next := models.CallbackState{Retry: 1, OperationCompleted: true}
	return models.InProgress(req.Desired, next, l.scheduler.DelaySeconds(next.Retry))
}

// verifyAbsence re-reads the monitor until the backend confirms it is gone
func (l *MonitorLifecycle) verifyAbsence(ctx context.Context, req Request) models.ProgressEvent {
	cb := req.Callback
	if cb.Retry > l.config.MaxRetries {
		return models.Failure(models.FaultNotStabilized,
			fmt.Sprintf("monitor %s still present after %d attempts", req.Desired.EntityID, l.config.MaxRetries))
	}

	_, _, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID)
	if err == nil {
		// Удаление еще не распространилось
		cb.Retry++
		klog.V(2).Infof("delete: monitor %s still present, attempt %d", req.Desired.EntityID, cb.Retry)
		return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
	}

	kind, retryable := ClassifyForRetry(err, models.FaultServiceInternalError)
	if kind == models.FaultNotFound {
		klog.Infof("delete: monitor %s confirmed gone", req.Desired.EntityID)
		return models.Succeeded(nil)
	}
	if !retryable {
		return models.Failure(kind, err.Error())
	}

	cb.Retry++
	klog.V(2).Infof("delete: absence check failed with %s, attempt %d: %v", kind, cb.Retry, err)
	return models.InProgress(req.Desired, cb, l.scheduler.DelaySeconds(cb.Retry))
}
