package notify

import (
	"context"
	"encoding/json"
	"time"

	"sivec/internal/domain/guia"
	"sivec/internal/domain/trip"
	"sivec/internal/general/contracts"
	"sivec/internal/general/logger"
	"sivec/internal/ports"
)

// Publisher is the broker-facing half of the notifier.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Broadcaster is the screen-facing half of the notifier.
type Broadcaster interface {
	Broadcast(ctx context.Context, branch string, msg any)
}

// Notifier fans out lifecycle events to RabbitMQ and to connected dispatch
// screens. Every call is best-effort: failures are logged and swallowed so
// an unreachable broker can never fail a committed state change.
type Notifier struct {
	publisher Publisher
	hub       Broadcaster
	logger    *logger.Logger
	producer  string
}

// New constructs a Notifier. hub may be nil for workers without screens.
func New(publisher Publisher, hub Broadcaster, logger *logger.Logger, producer string) *Notifier {
	return &Notifier{
		publisher: publisher,
		hub:       hub,
		logger:    logger,
		producer:  producer,
	}
}

var _ ports.EventNotifier = (*Notifier)(nil)

// NoteLinked announces a freshly linked delivery note. Screens see it only
// within the owning trip's branch, like every trip event.
func (n *Notifier) NoteLinked(ctx context.Context, note *guia.DeliveryNote, branch string) {
	n.emit(ctx, contracts.RouteGuiaAsignada, branch, noteMessage(contracts.EventGuiaAsignada, note, n.envelope(ctx)))
}

// NoteStatusChanged announces a delivered/not_delivered transition.
func (n *Notifier) NoteStatusChanged(ctx context.Context, note *guia.DeliveryNote, branch string) {
	n.emit(ctx, contracts.RouteGuiaEstado, branch, noteMessage(contracts.EventGuiaEstado, note, n.envelope(ctx)))
}

// TripStatusChanged announces a trip status transition.
func (n *Notifier) TripStatusChanged(ctx context.Context, t *trip.Trip, old trip.Status) {
	msg := contracts.TripStatusMessage{
		Type:          contracts.EventViajeEstado,
		TripID:        t.ID,
		VehicleNumber: t.VehicleNumber,
		DriverName:    t.DriverName,
		Branch:        t.Branch,
		OldStatusCode: old.Code(),
		StatusCode:    t.Status.Code(),
		Status:        t.Status.Label(),
		Envelope:      n.envelope(ctx),
	}
	n.emit(ctx, contracts.RouteViajeEstadoPrefix+statusKey(t.Status), t.Branch, msg)
}

// TripProgress announces updated trip counters after a note finalization.
func (n *Notifier) TripProgress(ctx context.Context, t *trip.Trip, p guia.Progress) {
	msg := contracts.TripProgressMessage{
		Type:         contracts.EventViajeProgreso,
		TripID:       t.ID,
		Total:        p.Total,
		Delivered:    p.Delivered,
		NotDelivered: p.NotDelivered,
		Finalized:    p.Finalized,
		Pending:      p.Pending,
		SuccessRate:  p.SuccessRate(),
		Envelope:     n.envelope(ctx),
	}
	n.emit(ctx, contracts.RouteViajeProgreso, t.Branch, msg)
}

// TripCompleted announces trip completion with the final quality ratio.
func (n *Notifier) TripCompleted(ctx context.Context, t *trip.Trip, p guia.Progress) {
	quality := p.DeliveryQuality()
	msg := contracts.TripStatusMessage{
		Type:          contracts.EventViajeCompletado,
		TripID:        t.ID,
		VehicleNumber: t.VehicleNumber,
		DriverName:    t.DriverName,
		Branch:        t.Branch,
		StatusCode:    t.Status.Code(),
		Status:        t.Status.Label(),
		SuccessRate:   &quality,
		Envelope:      n.envelope(ctx),
	}
	n.emit(ctx, contracts.RouteViajeCompletado, t.Branch, msg)
}

// emit publishes to the broker and pushes to screens, logging either failure.
func (n *Notifier) emit(ctx context.Context, routingKey, branch string, msg any) {
	body, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error(ctx, "event_marshal_failed", "Failed to encode event payload", err, map[string]any{
			"routing_key": routingKey,
		})
		return
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(contracts.ExchangeDespachoTopic, routingKey, body); err != nil {
			n.logger.Error(ctx, "event_publish_failed", "Failed to publish event to broker", err, map[string]any{
				"routing_key": routingKey,
			})
		}
	}

	if n.hub != nil {
		n.hub.Broadcast(ctx, branch, msg)
	}
}

func (n *Notifier) envelope(ctx context.Context) contracts.Envelope {
	return contracts.Envelope{
		CorrelationID: logger.RequestIDFromContext(ctx),
		Producer:      n.producer,
		SentAt:        time.Now().UTC(),
	}
}

func noteMessage(eventType string, note *guia.DeliveryNote, env contracts.Envelope) contracts.NoteEventMessage {
	return contracts.NoteEventMessage{
		Type:          eventType,
		NoteID:        note.ID,
		NoteNumber:    note.NoteNumber,
		InvoiceNumber: note.InvoiceNumber,
		TripID:        note.TripID,
		StatusCode:    note.Status.Code(),
		Status:        note.Status.Label(),
		DeliveredAt:   note.DeliveredAt,
		Envelope:      env,
	}
}

func statusKey(s trip.Status) string {
	switch s {
	case trip.StatusPending:
		return "7"
	case trip.StatusInProgress:
		return "8"
	case trip.StatusCompleted:
		return "9"
	default:
		return "0"
	}
}
