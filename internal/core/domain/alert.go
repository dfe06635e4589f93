package domain

import "time"

// AlertType categorizes the origin of an alert event.
type AlertType string

const (
	AlertPerformance AlertType = "performance"
	AlertError       AlertType = "error"
	AlertSecurity    AlertType = "security"
	AlertBusiness    AlertType = "business"
)

// Severity determines the escalation path for an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertTypes lists the accepted alert types in a stable order.
var AlertTypes = []AlertType{AlertPerformance, AlertError, AlertSecurity, AlertBusiness}

// Severities lists the accepted severities in escalation order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ValidAlertType reports whether t is a member of the enumeration.
func ValidAlertType(t AlertType) bool {
	for _, v := range AlertTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ValidSeverity reports whether s is a member of the enumeration.
func ValidSeverity(s Severity) bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

// Alert is a stored alert event with its resolution state.
type Alert struct {
	ID          string     `json:"id" db:"id"`
	Type        AlertType  `json:"type" db:"type"`
	Severity    Severity   `json:"severity" db:"severity"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Timestamp   time.Time  `json:"timestamp" db:"timestamp"`
	Resolved    bool       `json:"resolved" db:"resolved"`
	Resolution  string     `json:"resolution,omitempty" db:"resolution"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}
