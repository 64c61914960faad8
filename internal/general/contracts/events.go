package contracts

import "time"

// NoteEventMessage is published for "factura:guia_asignada" and
// "guia:estado_actualizado".
type NoteEventMessage struct {
	Type          string     `json:"type"`
	NoteID        string     `json:"guia_id"`
	NoteNumber    string     `json:"numero_guia"`
	InvoiceNumber string     `json:"numero_factura"`
	TripID        string     `json:"viaje_id"`
	StatusCode    int        `json:"estado_id"`
	Status        string     `json:"estado"`
	DeliveredAt   *time.Time `json:"fecha_entrega,omitempty"`
	Envelope
}

// TripStatusMessage is published for "viaje:estado_actualizado" and
// "viaje:completado".
type TripStatusMessage struct {
	Type          string `json:"type"`
	TripID        string `json:"viaje_id"`
	VehicleNumber string `json:"numero_vehiculo"`
	DriverName    string `json:"piloto"`
	Branch        string `json:"sucursal,omitempty"`
	OldStatusCode int    `json:"estado_anterior,omitempty"`
	StatusCode    int    `json:"estado_id"`
	Status        string `json:"estado"`
	// SuccessRate is delivered/finalized in percent; only on completion.
	SuccessRate *int `json:"tasa_exito,omitempty"`
	Envelope
}

// TripProgressMessage is published for "viaje:progreso_actualizado" on every
// delivered/not_delivered transition.
type TripProgressMessage struct {
	Type         string `json:"type"`
	TripID       string `json:"viaje_id"`
	Total        int    `json:"total_guias"`
	Delivered    int    `json:"entregadas"`
	NotDelivered int    `json:"no_entregadas"`
	Finalized    int    `json:"finalizadas"`
	Pending      int    `json:"pendientes"`
	SuccessRate  int    `json:"tasa_exito"` // delivered/total in percent
	Envelope
}

// PositionMessage is the GPS fix relayed by the provider bridge into the
// posiciones fanout exchange.
type PositionMessage struct {
	Type          string    `json:"type"`
	VehicleNumber string    `json:"numero_vehiculo"`
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lng"`
	RecordedAt    time.Time `json:"registrado_en"`
	Envelope
}
