package model

// Severity is the visual weight of a user-facing notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is a user-facing message raised by a failed backend call.
// Blocking notifications must be acknowledged before the user continues
// (the unreachable-backend modal).
type Notification struct {
	Severity Severity
	Title    string
	Message  string
	Status   int // HTTP status; 0 when no response was received.
	Blocking bool
}
