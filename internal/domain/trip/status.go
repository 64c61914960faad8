package trip

import "errors"

// Status is a trip status code as stored in the shared `estados` catalog.
type Status int

const (
	StatusPending    Status = 7
	StatusInProgress Status = 8
	StatusCompleted  Status = 9
)

var ErrInvalidStatus = errors.New("invalid trip status")

// ParseStatus validates a raw status code.
func ParseStatus(code int) (Status, error) {
	status := Status(code)
	if status.Valid() {
		return status, nil
	}
	return 0, ErrInvalidStatus
}

// Valid reports whether status is one of the allowed trip status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Code returns the numeric catalog code.
func (status Status) Code() int {
	return int(status)
}

// Label returns the human-readable name used in messages and events.
func (status Status) Label() string {
	switch status {
	case StatusPending:
		return "pendiente"
	case StatusInProgress:
		return "en_curso"
	case StatusCompleted:
		return "completado"
	default:
		return "desconocido"
	}
}

// CanTransitionTo specifies if the status can transition to the next status.
// Trips only move forward: pending -> in_progress -> completed.
func (status Status) CanTransitionTo(next Status) bool {
	switch status {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	case StatusCompleted:
		return false
	default:
		return false
	}
}

// Active reports whether the status counts against driver/vehicle exclusivity.
func (status Status) Active() bool {
	return status == StatusPending || status == StatusInProgress
}

// Terminal indicates if the status is a final state.
func (status Status) Terminal() bool {
	return status == StatusCompleted
}
