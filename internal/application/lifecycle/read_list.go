package lifecycle

import (
	"context"

	"k8s.io/klog/v2"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

// Read returns the backend's current view of the monitor. Stateless: no
// callback state, no retry; faults are classified and surfaced as terminal.
func (l *MonitorLifecycle) Read(ctx context.Context, req Request) models.ProgressEvent {
	remote, _, err := l.gateway.GetMonitor(ctx, req.Desired.EntityID)
	if err != nil {
		return models.Failure(Classify(err), err.Error())
	}

	model := req.Desired.Clone()
	model.MergeFrom(remote)
	return models.Succeeded(model)
}

// List enumerates all monitors of the environment. Stateless like Read.
func (l *MonitorLifecycle) List(ctx context.Context) models.ProgressEvent {
	monitors, err := l.gateway.ListMonitors(ctx)
	if err != nil {
		return models.Failure(Classify(err), err.Error())
	}

	klog.V(2).Infof("list: %d monitors", len(monitors))
	return models.Listed(monitors)
}
