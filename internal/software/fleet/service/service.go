package service

import (
	"context"
	"errors"
	"strings"

	"sivec/internal/domain/driver"
	"sivec/internal/domain/vehicle"
	"sivec/internal/general/logger"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrVehicleExists = errors.New("el vehículo ya está registrado")
	ErrDriverExists  = errors.New("el piloto ya existe en el registro")
)

// Service implements ports.FleetService: the vehicle catalog, the local
// roster of temporary drivers, and name resolution across both rosters.
type Service struct {
	vehicles    ports.VehicleRepository
	tempDrivers ports.TemporaryDriverRepository
	roster      ports.RosterGateway
	logger      *logger.Logger
}

// NewService wires the fleet service with its collaborators.
func NewService(
	vehicles ports.VehicleRepository,
	tempDrivers ports.TemporaryDriverRepository,
	roster ports.RosterGateway,
	logger *logger.Logger,
) *Service {
	return &Service{
		vehicles:    vehicles,
		tempDrivers: tempDrivers,
		roster:      roster,
		logger:      logger,
	}
}

var _ ports.FleetService = (*Service)(nil)

// ResolveDriver validates a name against the external roster first (it is
// authoritative) and the local temporary roster second. Matching is by
// exact name; only the display name is persisted downstream.
func (s *Service) ResolveDriver(ctx context.Context, name string) (driver.Ref, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return driver.Ref{}, driver.ErrNameRequired
	}

	onRoster, err := s.roster.Exists(ctx, name)
	if err != nil {
		return driver.Ref{}, err
	}
	if onRoster {
		return driver.ExternalRef(name), nil
	}

	tmp, err := s.tempDrivers.FindByName(ctx, name)
	if err != nil {
		return driver.Ref{}, err
	}
	if tmp != nil && tmp.Active {
		return tmp.Ref(), nil
	}

	return driver.Ref{}, driver.ErrUnknownDriver
}

// CreateVehicle registers a vehicle in the fleet catalog.
func (s *Service) CreateVehicle(ctx context.Context, in ports.CreateVehicleInput) (ports.VehicleView, error) {
	v, err := vehicle.NewVehicle(in.Number, in.Plate, in.Branch)
	if err != nil {
		return ports.VehicleView{}, err
	}

	if err := s.vehicles.Create(ctx, v); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ports.VehicleView{}, ErrVehicleExists
		}
		return ports.VehicleView{}, err
	}

	s.logger.Info(ctx, "vehiculo_registrado", "Vehicle registered", map[string]any{
		"numero": v.Number, "sucursal": v.Branch,
	})

	return vehicleView(v), nil
}

// ListVehicles returns the catalog, optionally scoped to a branch.
func (s *Service) ListVehicles(ctx context.Context, branch string, onlyActive bool) ([]ports.VehicleView, error) {
	vehicles, err := s.vehicles.List(ctx, strings.TrimSpace(branch), onlyActive)
	if err != nil {
		return nil, err
	}

	out := make([]ports.VehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, vehicleView(v))
	}
	return out, nil
}

// SetVehicleActive toggles a vehicle in or out of dispatch.
func (s *Service) SetVehicleActive(ctx context.Context, number string, active bool) error {
	if err := s.vehicles.SetActive(ctx, strings.TrimSpace(number), active); err != nil {
		return err
	}

	action := "vehiculo_desactivado"
	if active {
		action = "vehiculo_activado"
	}
	s.logger.Info(ctx, action, "Vehicle availability changed", map[string]any{
		"numero": number, "activo": active,
	})
	return nil
}

// GetVehicle fetches a vehicle by fleet number, or nil when unknown.
func (s *Service) GetVehicle(ctx context.Context, number string) (*vehicle.Vehicle, error) {
	return s.vehicles.GetByNumber(ctx, strings.TrimSpace(number))
}

// CreateTemporaryDriver adds an ad hoc driver to the local roster. Names
// already present in either roster are rejected to keep name matching
// unambiguous.
func (s *Service) CreateTemporaryDriver(ctx context.Context, name, notes string) (ports.RosterEntry, error) {
	d, err := driver.NewTemporary(name, notes)
	if err != nil {
		return ports.RosterEntry{}, err
	}

	onRoster, err := s.roster.Exists(ctx, d.Name)
	if err != nil {
		return ports.RosterEntry{}, err
	}
	if onRoster {
		return ports.RosterEntry{}, ErrDriverExists
	}

	existing, err := s.tempDrivers.FindByName(ctx, d.Name)
	if err != nil {
		return ports.RosterEntry{}, err
	}
	if existing != nil {
		return ports.RosterEntry{}, ErrDriverExists
	}

	if err := s.tempDrivers.Create(ctx, d); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ports.RosterEntry{}, ErrDriverExists
		}
		return ports.RosterEntry{}, err
	}

	s.logger.Info(ctx, "piloto_temporal_creado", "Temporary driver registered", map[string]any{
		"nombre": d.Name,
	})

	return ports.RosterEntry{
		Name:   d.Name,
		Source: string(driver.SourceTemporary),
		ID:     d.ID,
		Active: d.Active,
		Notes:  d.Notes,
	}, nil
}

// ListRoster merges the external roster with the local temporary drivers.
func (s *Service) ListRoster(ctx context.Context) ([]ports.RosterEntry, error) {
	names, err := s.roster.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	temps, err := s.tempDrivers.List(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]ports.RosterEntry, 0, len(names)+len(temps))
	for _, n := range names {
		out = append(out, ports.RosterEntry{
			Name:   n,
			Source: string(driver.SourceExternal),
			Active: true,
		})
	}
	for _, t := range temps {
		out = append(out, ports.RosterEntry{
			Name:   t.Name,
			Source: string(driver.SourceTemporary),
			ID:     t.ID,
			Active: t.Active,
			Notes:  t.Notes,
		})
	}
	return out, nil
}

func vehicleView(v *vehicle.Vehicle) ports.VehicleView {
	return ports.VehicleView{
		Number: v.Number,
		Plate:  v.Plate,
		Branch: v.Branch,
		Active: v.Active,
	}
}
