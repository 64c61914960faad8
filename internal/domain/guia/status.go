package guia

import "errors"

// Status is a delivery-note status code from the shared `estados` catalog.
type Status int

const (
	StatusLinked       Status = 3
	StatusDelivered    Status = 4
	StatusNotDelivered Status = 5
)

var ErrInvalidStatus = errors.New("invalid delivery note status")

// ParseStatus validates a raw status code.
func ParseStatus(code int) (Status, error) {
	status := Status(code)
	if status.Valid() {
		return status, nil
	}
	return 0, ErrInvalidStatus
}

// Valid reports whether status is one of the allowed note statuses.
func (status Status) Valid() bool {
	switch status {
	case StatusLinked, StatusDelivered, StatusNotDelivered:
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
	case StatusLinked:
		return "vinculada"
	case StatusDelivered:
		return "entregada"
	case StatusNotDelivered:
		return "no_entregada"
	default:
		return "desconocido"
	}
}

// Terminal indicates whether the status is final. Delivered and
// not_delivered notes never change again.
func (status Status) Terminal() bool {
	return status == StatusDelivered || status == StatusNotDelivered
}
