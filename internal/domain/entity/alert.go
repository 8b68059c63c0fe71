package entity

import "time"

const (
	AlertTypeError   = "error"
	AlertTypeWarning = "warning"

	SeverityHigh   = "high"
	SeverityMedium = "medium"

	SystemHealthy  = "healthy"
	SystemWarning  = "warning"
	SystemCritical = "critical"
)

// Alert is a single monitoring finding.
type Alert struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// SystemHealthFromAlerts is healthy with no alerts, critical with any high-severity alert
// and warning otherwise.
func SystemHealthFromAlerts(alerts []Alert) string {
	if len(alerts) == 0 {
		return SystemHealthy
	}
	for _, a := range alerts {
		if a.Severity == SeverityHigh {
			return SystemCritical
		}
	}
	return SystemWarning
}
