package handlers

// Error is a simple error type for handler errors.
// It allows defining sentinel errors as constants.
type Error string

// Error implements the error interface.
func (e Error) Error() string { return string(e) }

// Sentinel errors for registry operations.
const (
	// ErrEmptyHandlerID is returned when registering a definition without id.
	ErrEmptyHandlerID = Error("handler ID cannot be empty")

	// ErrNilFactory is returned when registering a definition without factory.
	ErrNilFactory = Error("handler factory cannot be nil")

	// ErrHandlerExists is returned when registering an id twice.
	ErrHandlerExists = Error("handler with this ID already exists")

	// ErrHandlerNotFound is returned when a variant type is not registered.
	ErrHandlerNotFound = Error("handler not found")

	// ErrUnsafePath is returned by the file handler for paths escaping the files folder.
	ErrUnsafePath = Error("file path escapes the files folder")
)
