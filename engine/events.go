package engine

// Severity classifies an engine event.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the severity label.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is one message emitted by the core or an engine during a decode or
// encode call.
type Event struct {
	Severity Severity
	Message  string
}

// EventHandler receives events. The host decides how to render them; the
// core owns no global logger.
type EventHandler func(Event)

// Emit sends an event through h, tolerating a nil handler.
func (h EventHandler) Emit(sev Severity, msg string) {
	if h != nil {
		h(Event{Severity: sev, Message: msg})
	}
}
