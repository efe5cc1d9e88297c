package applications

import "errors"

var (
	// ErrApplicationNotFound is returned when no application has the given id
	ErrApplicationNotFound = errors.New("application not found")

	// ErrNilApplication is returned when a nil record is handed to the service
	ErrNilApplication = errors.New("applications: application is nil")
)
