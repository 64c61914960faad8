package invoice

import "errors"

// Status is an invoice-assignment status code from the shared `estados` catalog.
type Status int

const (
	StatusAssigned   Status = 1
	StatusDispatched Status = 2
)

var ErrInvalidStatus = errors.New("invalid assignment status")

// ParseStatus validates a raw status code.
func ParseStatus(code int) (Status, error) {
	status := Status(code)
	if status.Valid() {
		return status, nil
	}
	return 0, ErrInvalidStatus
}

// Valid reports whether status is one of the allowed assignment statuses.
func (status Status) Valid() bool {
	return status == StatusAssigned || status == StatusDispatched
}

// Code returns the numeric catalog code.
func (status Status) Code() int {
	return int(status)
}

// Label returns the human-readable name used in messages and events.
func (status Status) Label() string {
	switch status {
	case StatusAssigned:
		return "asignada"
	case StatusDispatched:
		return "despachada"
	default:
		return "desconocido"
	}
}
