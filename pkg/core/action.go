package core

import "fmt"

// ActionKind names an effect attached to a node event.
// The set is closed: an interpreter handles exactly these kinds.
type ActionKind string

const (
	// ActionSetValue writes config.value into the component config.targetId.
	ActionSetValue ActionKind = "setValue"
	// ActionSetVariable writes config.value into the variable config.key.
	ActionSetVariable ActionKind = "setVariable"
	// ActionShowMessage displays config.content, optionally with config.level.
	ActionShowMessage ActionKind = "showMessage"
	// ActionNavigate opens config.url, optionally in a new tab (config.newTab).
	ActionNavigate ActionKind = "navigate"
	// ActionRunScript runs config.code in the sandbox.
	ActionRunScript ActionKind = "runScript"
)

// actionSchema lists the config fields each kind requires.
var actionSchema = map[ActionKind][]string{
	ActionSetValue:    {"targetId", "value"},
	ActionSetVariable: {"key", "value"},
	ActionShowMessage: {"content"},
	ActionNavigate:    {"url"},
	ActionRunScript:   {"code"},
}

// ActionKinds returns every known action kind.
func ActionKinds() []ActionKind {
	return []ActionKind{ActionSetValue, ActionSetVariable, ActionShowMessage, ActionNavigate, ActionRunScript}
}

// RequiredFields returns the config keys a kind needs, or nil for unknown kinds.
func RequiredFields(kind ActionKind) []string {
	return actionSchema[kind]
}

// Action is an event-triggered effect descriptor stored on a node.
// The core only stores actions; executing them is up to the host.
type Action struct {
	Type   ActionKind     `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

// Validate checks the action against the fixed config schema of its kind.
func (a Action) Validate() error {
	fields, ok := actionSchema[a.Type]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Type)
	}
	for _, f := range fields {
		if _, ok := a.Config[f]; !ok {
			return fmt.Errorf("%w: %s requires config.%s", ErrInvalidAction, a.Type, f)
		}
	}
	return nil
}

// Validate checks every action of every event.
func (e Events) Validate() error {
	for name, actions := range e {
		for i, a := range actions {
			if err := a.Validate(); err != nil {
				return fmt.Errorf("event %s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}
