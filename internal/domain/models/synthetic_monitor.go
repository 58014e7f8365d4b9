package models

// MonitorType задаёт вид синтетического монитора
type MonitorType string

const (
	MonitorTypeBrowser MonitorType = "BROWSER"
	MonitorTypeHTTP    MonitorType = "HTTP"
)

// TagWithSourceInfo represents a metadata tag attached to a monitor
type TagWithSourceInfo struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Source  string `json:"source,omitempty"`
	Context string `json:"context,omitempty"`
}

// KeyPerformanceMetrics holds the KPM selection for browser monitors
type KeyPerformanceMetrics struct {
	LoadActionKPM string `json:"loadActionKpm,omitempty"`
	XHRActionKPM  string `json:"xhrActionKpm,omitempty"`
}

// MonitorScript is the recorded clickpath/request script; the provider treats
// its contents as opaque and passes them through unchanged
type MonitorScript struct {
	Type          string                   `json:"type,omitempty"`
	Version       string                   `json:"version,omitempty"`
	Configuration map[string]interface{}   `json:"configuration,omitempty"`
	Events        []map[string]interface{} `json:"events,omitempty"`
	Requests      []map[string]interface{} `json:"requests,omitempty"`
}

// SyntheticMonitor is the declared desired state of one monitor plus the
// identity the backend assigned once the monitor exists
type SyntheticMonitor struct {
	EntityID              string                 `json:"entityId,omitempty"`
	Name                  string                 `json:"name"`
	Type                  MonitorType            `json:"type"`
	FrequencyMin          int                    `json:"frequencyMin,omitempty"`
	Enabled               bool                   `json:"enabled"`
	CreatedFrom           string                 `json:"createdFrom,omitempty"`
	Locations             []string               `json:"locations,omitempty"`
	Tags                  []TagWithSourceInfo    `json:"tags,omitempty"`
	ManuallyAssignedApps  []string               `json:"manuallyAssignedApps,omitempty"`
	Script                *MonitorScript         `json:"script,omitempty"`
	KeyPerformanceMetrics *KeyPerformanceMetrics `json:"keyPerformanceMetrics,omitempty"`
}

// Clone возвращает глубокую копию монитора
func (m *SyntheticMonitor) Clone() *SyntheticMonitor {
	if m == nil {
		return nil
	}
	out := *m
	out.Locations = append([]string(nil), m.Locations...)
	out.Tags = append([]TagWithSourceInfo(nil), m.Tags...)
	out.ManuallyAssignedApps = append([]string(nil), m.ManuallyAssignedApps...)
	if m.Script != nil {
		script := *m.Script
		out.Script = &script
	}
	if m.KeyPerformanceMetrics != nil {
		kpm := *m.KeyPerformanceMetrics
		out.KeyPerformanceMetrics = &kpm
	}
	return &out
}

// MergeFrom folds fields observed on a successful remote read or write into
// the model. The backend-assigned EntityID is write-once: an already known
// identity is never overwritten.
func (m *SyntheticMonitor) MergeFrom(remote *SyntheticMonitor) {
	if remote == nil {
		return
	}
	if m.EntityID == "" {
		m.EntityID = remote.EntityID
	}
	if remote.Name != "" {
		m.Name = remote.Name
	}
	if remote.Type != "" {
		m.Type = remote.Type
	}
	if remote.FrequencyMin != 0 {
		m.FrequencyMin = remote.FrequencyMin
	}
	m.Enabled = remote.Enabled
	if remote.CreatedFrom != "" {
		m.CreatedFrom = remote.CreatedFrom
	}
	if len(remote.Locations) > 0 {
		m.Locations = append([]string(nil), remote.Locations...)
	}
	if len(remote.Tags) > 0 {
		m.Tags = append([]TagWithSourceInfo(nil), remote.Tags...)
	}
	if len(remote.ManuallyAssignedApps) > 0 {
		m.ManuallyAssignedApps = append([]string(nil), remote.ManuallyAssignedApps...)
	}
	if remote.Script != nil {
		script := *remote.Script
		m.Script = &script
	}
	if remote.KeyPerformanceMetrics != nil {
		kpm := *remote.KeyPerformanceMetrics
		m.KeyPerformanceMetrics = &kpm
	}
}
