package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"sivec/internal/general/contracts"
	"sivec/internal/general/logger"
	"sivec/internal/general/rabbitmq"
	"sivec/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broadcaster pushes position updates to connected screens.
type Broadcaster interface {
	Broadcast(ctx context.Context, branch string, msg any)
}

// Service implements ports.TrackingService: it drains the GPS provider's
// fanout queue, keeps the last fix per vehicle, and relays fixes to
// dispatch screens. Position messages carry no branch so they broadcast
// to every screen.
type Service struct {
	client    *rabbitmq.Client
	positions ports.PositionRepository
	hub       Broadcaster
	logger    *logger.Logger
}

// NewService wires the tracking service.
func NewService(client *rabbitmq.Client, positions ports.PositionRepository, hub Broadcaster, logger *logger.Logger) *Service {
	return &Service{
		client:    client,
		positions: positions,
		hub:       hub,
		logger:    logger,
	}
}

var _ ports.TrackingService = (*Service)(nil)

// LastPosition returns the vehicle's last known fix, or nil when unknown.
func (s *Service) LastPosition(ctx context.Context, vehicleNumber string) (*ports.Position, error) {
	return s.positions.GetByVehicle(ctx, strings.TrimSpace(vehicleNumber))
}

// StartBackgroundConsumer consumes the positions queue until ctx ends,
// re-subscribing after channel failures.
func (s *Service) StartBackgroundConsumer(ctx context.Context) {
	go func() {
		for {
			err := s.client.Consume(ctx, contracts.QueuePosicionesTracking, "tracking-service", 10, s.handleDelivery)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.logger.Error(ctx, "consume_restart", "Position consumer stopped, restarting", err, nil)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()
}

// handleDelivery stores one GPS fix and relays it to screens. Returning an
// error drops the message; position streams are lossy by nature.
func (s *Service) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.PositionMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		s.logger.Error(ctx, "position_decode_failed", "Dropping malformed position message", err, map[string]any{
			"size": len(d.Body),
		})
		return err
	}

	if strings.TrimSpace(msg.VehicleNumber) == "" {
		s.logger.Error(ctx, "position_missing_vehicle", "Dropping position without vehicle number", nil, nil)
		return nil
	}

	recordedAt := msg.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	p := ports.Position{
		VehicleNumber: msg.VehicleNumber,
		Latitude:      msg.Latitude,
		Longitude:     msg.Longitude,
		RecordedAt:    recordedAt,
	}
	if err := s.positions.Upsert(ctx, p); err != nil {
		return err
	}

	if s.hub != nil {
		msg.Type = contracts.EventPosicion
		s.hub.Broadcast(ctx, "", msg)
	}

	return nil
}
