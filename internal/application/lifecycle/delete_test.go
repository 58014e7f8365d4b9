package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudformation-dynatrace-resource-providers/internal/application/lifecycle/testutil"
	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

func TestDelete_CheckExistenceAndDelete(t *testing.T) {
	tests := []struct {
		name            string
		getErr          error
		deleteErr       error
		expectedStatus  models.OperationStatus
		expectedFault   models.FaultKind
		expectDelete    bool
		expectCompleted bool
	}{
		{
			name:            "existing monitor is deleted and verification scheduled",
			expectedStatus:  models.StatusInProgress,
			expectDelete:    true,
			expectCompleted: true,
		},
		{
			name:           "missing monitor is terminal",
			getErr:         testutil.NotFoundErr(),
			expectedStatus: models.StatusFailed,
			expectedFault:  models.FaultNotFound,
		},
		{
			name:           "transient fault on existence check retries",
			getErr:         testutil.ServerErr(),
			expectedStatus: models.StatusInProgress,
		},
		{
			name:            "not found on delete call falls through to verification",
			deleteErr:       testutil.NotFoundErr(),
			expectedStatus:  models.StatusInProgress,
			expectDelete:    true,
			expectCompleted: true,
		},
		{
			name:           "transient fault on delete call retries the whole phase",
			deleteErr:      testutil.ServerErr(),
			expectedStatus: models.StatusInProgress,
			expectDelete:   true,
		},
		{
			name:           "unclassified fault on delete call is terminal",
			deleteErr:      testutil.ForbiddenErr(),
			expectedStatus: models.StatusFailed,
			expectedFault:  models.FaultOther,
			expectDelete:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := testutil.NewFakeGateway().
				QueueGet(testutil.CreateTestMonitor(testutil.TestEntityID), 0, tt.getErr).
				QueueDelete(tt.deleteErr)

			event := newLifecycle(t, gateway).Delete(context.Background(), Request{
				Desired: testutil.CreateTestMonitor(testutil.TestEntityID),
			})

			assert.Equal(t, tt.expectedStatus, event.Status)
			assert.Equal(t, tt.expectedFault, event.Fault)
			if tt.expectDelete {
				require.Len(t, gateway.DeleteCalls, 1)
			} else {
				assert.Empty(t, gateway.DeleteCalls)
			}
			if event.Status == models.StatusInProgress {
				assert.Equal(t, tt.expectCompleted, event.Callback.OperationCompleted)
				assert.Equal(t, 1, event.Callback.Retry)
			}
		})
	}
}

func TestDelete_VerifyAbsence(t *testing.T) {
	tests := []struct {
		name           string
		callback       models.CallbackState
		getReply       testutil.GetReply
		expectedStatus models.OperationStatus
		expectedFault  models.FaultKind
		expectedRetry  int
	}{
		{
			name:           "not found confirms the delete",
			callback:       models.CallbackState{Retry: 1, OperationCompleted: true},
			getReply:       testutil.GetReply{Err: testutil.NotFoundErr()},
			expectedStatus: models.StatusSuccess,
		},
		{
			name:           "monitor still present re-schedules",
			callback:       models.CallbackState{Retry: 3, OperationCompleted: true},
			getReply:       testutil.GetReply{Monitor: testutil.CreateTestMonitor(testutil.TestEntityID)},
			expectedStatus: models.StatusInProgress,
			expectedRetry:  4,
		},
		{
			name:           "transient fault during verification retries",
			callback:       models.CallbackState{Retry: 2, OperationCompleted: true},
			getReply:       testutil.GetReply{Err: testutil.ServerErr()},
			expectedStatus: models.StatusInProgress,
			expectedRetry:  3,
		},
		{
			name:           "unclassified fault during verification is terminal",
			callback:       models.CallbackState{Retry: 2, OperationCompleted: true},
			getReply:       testutil.GetReply{Err: testutil.ForbiddenErr()},
			expectedStatus: models.StatusFailed,
			expectedFault:  models.FaultOther,
		},
		{
			name:           "budget exhausted while monitor persists",
			callback:       models.CallbackState{Retry: 11, OperationCompleted: true},
			getReply:       testutil.GetReply{Monitor: testutil.CreateTestMonitor(testutil.TestEntityID)},
			expectedStatus: models.StatusFailed,
			expectedFault:  models.FaultNotStabilized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := testutil.NewFakeGateway().
				QueueGet(tt.getReply.Monitor, tt.getReply.ServerTiming, tt.getReply.Err)

			event := newLifecycle(t, gateway).Delete(context.Background(), Request{
				Desired:  testutil.CreateTestMonitor(testutil.TestEntityID),
				Callback: tt.callback,
			})

			assert.Equal(t, tt.expectedStatus, event.Status)
			assert.Equal(t, tt.expectedFault, event.Fault)
			if tt.expectedStatus == models.StatusInProgress {
				assert.Equal(t, tt.expectedRetry, event.Callback.Retry)
				assert.True(t, event.Callback.OperationCompleted)
			}
			if tt.expectedStatus == models.StatusSuccess {
				assert.Nil(t, event.Model, "a deleted monitor carries no final model")
			}
		})
	}
}

func TestDelete_ConvergesAfterTransientFaults(t *testing.T) {
	gateway := testutil.NewFakeGateway().
		QueueGet(testutil.CreateTestMonitor(testutil.TestEntityID), 0, nil).
		QueueGet(testutil.CreateTestMonitor(testutil.TestEntityID), 0, nil).
		QueueGet(nil, 0, testutil.ServerErr()).
		QueueGet(nil, 0, testutil.NotFoundErr()).
		QueueDelete(nil)

	l := newLifecycle(t, gateway)
	event := l.Delete(context.Background(), Request{Desired: testutil.CreateTestMonitor(testutil.TestEntityID)})
	for !event.Terminal() {
		event = l.Delete(context.Background(), Request{
			Desired:  testutil.CreateTestMonitor(testutil.TestEntityID),
			Callback: event.Callback,
		})
	}

	require.Equal(t, models.StatusSuccess, event.Status)
	require.Len(t, gateway.DeleteCalls, 1)
	// existence check + still-present read + transient fault + confirming 404
	assert.Len(t, gateway.GetCalls, 4)
}
