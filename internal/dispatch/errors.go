package dispatch

import "errors"

// Domain-specific errors for the dispatcher.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoIndex is returned when a topic carries no numeric path segment.
	ErrNoIndex = errors.New("dispatch: topic has no numeric index")

	// ErrInvalidIndex is returned when a numeric segment cannot be used as an id.
	ErrInvalidIndex = errors.New("dispatch: invalid topic index")

	// ErrInvalidPayload is returned when a JSON payload cannot be decoded.
	ErrInvalidPayload = errors.New("dispatch: invalid payload")

	// ErrHierarchyTooDeep is returned when a hierarchy snapshot nests deeper
	// than any real installation could.
	ErrHierarchyTooDeep = errors.New("dispatch: hierarchy too deep")

	// ErrNoStore is returned when a dispatcher is created without a store.
	ErrNoStore = errors.New("dispatch: store is required")

	// ErrNoClientID is returned when a dispatcher is created without a client id.
	ErrNoClientID = errors.New("dispatch: client id is required")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("dispatch: already started")

	// ErrStopped is returned for messages delivered after Stop.
	ErrStopped = errors.New("dispatch: stopped")
)
