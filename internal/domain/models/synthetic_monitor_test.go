package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticMonitor_MergeFrom(t *testing.T) {
	t.Run("entity id is write-once", func(t *testing.T) {
		model := &SyntheticMonitor{EntityID: "SYNTHETIC_TEST-01", Name: "checkout"}
		model.MergeFrom(&SyntheticMonitor{EntityID: "SYNTHETIC_TEST-99", Name: "checkout-v2"})

		assert.Equal(t, "SYNTHETIC_TEST-01", model.EntityID)
		assert.Equal(t, "checkout-v2", model.Name)
	})

	t.Run("unknown entity id is adopted from the remote view", func(t *testing.T) {
		model := &SyntheticMonitor{Name: "checkout"}
		model.MergeFrom(&SyntheticMonitor{EntityID: "SYNTHETIC_TEST-42"})

		assert.Equal(t, "SYNTHETIC_TEST-42", model.EntityID)
	})

	t.Run("zero remote fields keep declared values", func(t *testing.T) {
		model := &SyntheticMonitor{Name: "checkout", FrequencyMin: 15, Locations: []string{"GEOLOCATION-1"}}
		model.MergeFrom(&SyntheticMonitor{})

		assert.Equal(t, "checkout", model.Name)
		assert.Equal(t, 15, model.FrequencyMin)
		assert.Equal(t, []string{"GEOLOCATION-1"}, model.Locations)
	})

	t.Run("nil remote is a no-op", func(t *testing.T) {
		model := &SyntheticMonitor{Name: "checkout"}
		model.MergeFrom(nil)
		assert.Equal(t, "checkout", model.Name)
	})
}

func TestSyntheticMonitor_Clone(t *testing.T) {
	original := &SyntheticMonitor{
		EntityID:  "SYNTHETIC_TEST-01",
		Name:      "checkout",
		Locations: []string{"GEOLOCATION-1"},
		Script:    &MonitorScript{Type: "clickpath"},
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	clone.Locations[0] = "GEOLOCATION-2"
	clone.Script.Type = "availability"

	assert.Equal(t, "GEOLOCATION-1", original.Locations[0])
	assert.Equal(t, "clickpath", original.Script.Type)
}

func TestCallbackState_Started(t *testing.T) {
	assert.False(t, CallbackState{}.Started())
	assert.True(t, CallbackState{Retry: 1}.Started())
	assert.True(t, CallbackState{OperationCompleted: true}.Started())
	assert.True(t, CallbackState{ServerTiming: 12.5}.Started())
}
