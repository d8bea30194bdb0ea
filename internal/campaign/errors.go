package campaign

import "fmt"

// ValidationError reports a structurally invalid order or parameter set.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports an order issued for a commander or army the
// issuing faction does not control.
type AuthorizationError struct {
	Faction FactionID
	Subject string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("faction %d is not authorized to command %s", e.Faction, e.Subject)
}

// NotFoundError reports a reference to an entity that does not exist in the
// campaign arenas.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// InvalidRouteError reports a movement or courier path that cannot be walked
// on the map.
type InvalidRouteError struct {
	Reason string
}

func (e *InvalidRouteError) Error() string {
	return fmt.Sprintf("invalid route: %s", e.Reason)
}

// InvalidStateError reports an operation applied to an entity whose current
// state forbids it, such as cancelling an order that already finished.
type InvalidStateError struct {
	Kind   string
	ID     any
	State  string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %v in state %q", e.Action, e.Kind, e.ID, e.State)
}

// ConflictError reports an operation that collides with existing campaign
// state, such as a second recruitment project at the same stronghold.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}
