package trip

// EventType corresponds to the values stored in the `viaje_eventos` table.
type EventType string

const (
	EventCreated       EventType = "VIAJE_CREADO"
	EventStarted       EventType = "VIAJE_INICIADO"
	EventCompleted     EventType = "VIAJE_COMPLETADO"
	EventStatusChanged EventType = "ESTADO_ACTUALIZADO"
)

// EventTypeFor returns the event name recorded for a transition into status.
func EventTypeFor(status Status) EventType {
	switch status {
	case StatusInProgress:
		return EventStarted
	case StatusCompleted:
		return EventCompleted
	default:
		return EventStatusChanged
	}
}
