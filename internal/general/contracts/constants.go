package contracts

// Exchanges
const (
	ExchangeDespachoTopic    = "despacho_topic"
	ExchangePosicionesFanout = "posiciones_fanout"
)

// Queues
const (
	QueueEventosDespacho    = "eventos_despacho"
	QueuePosicionesTracking = "posiciones_tracking"
)

// Routing patterns
const (
	RouteGuiaAsignada      = "factura.guia_asignada"
	RouteGuiaEstado        = "guia.estado_actualizado"
	RouteViajeEstadoPrefix = "viaje.estado." // {status_code}
	RouteViajeProgreso     = "viaje.progreso"
	RouteViajeCompletado   = "viaje.completado"
)

// WebSocket / payload event names
const (
	EventGuiaAsignada    = "factura:guia_asignada"
	EventGuiaEstado      = "guia:estado_actualizado"
	EventViajeEstado     = "viaje:estado_actualizado"
	EventViajeProgreso   = "viaje:progreso_actualizado"
	EventViajeCompletado = "viaje:completado"
	EventPosicion        = "vehiculo:posicion"
)
