package notify

// Event is the payload carried by a change-notification frame. Connected
// events omit the parameter list entirely; change events always carry at
// least one parameter name, sorted ascending.
type Event struct {
	Type       string   `json:"type"`
	Parameters []string `json:"parameters,omitempty"`
}

const (
	// EventTypeConnected is emitted exactly once when a stream is established.
	EventTypeConnected = "connected"

	// EventTypeParameterValuesChanged is emitted when a poll tick detects new
	// parameter values for a project.
	EventTypeParameterValuesChanged = "parameter_values_changed"
)

// Connected builds the stream-established event.
func Connected() Event {
	return Event{Type: EventTypeConnected}
}

// ParameterValuesChanged builds a change event for the given parameter names.
// Callers are expected to pass names already sorted ascending.
func ParameterValuesChanged(parameters []string) Event {
	return Event{Type: EventTypeParameterValuesChanged, Parameters: parameters}
}
