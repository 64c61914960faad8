package postgres

import (
	"context"

	"sivec/internal/domain/trip"
	"sivec/internal/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepo answers the read-only aggregate queries behind the summary
// report. Aggregates run on the pool; they never join a write transaction.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo constructs a new ReportRepo.
func NewReportRepo(pool *pgxpool.Pool) ports.ReportRepository {
	return &ReportRepo{pool: pool}
}

// CountTripsByStatus counts trips in a status, optionally scoped to a branch.
func (repo *ReportRepo) CountTripsByStatus(ctx context.Context, branch string, status trip.Status) (int, error) {
	var n int
	err := repo.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM viajes
		WHERE estado_id = $1
		  AND ($2 = '' OR sucursal = $2)
	`, status.Code(), branch).Scan(&n)
	return n, err
}

// CountTripsCompletedOn counts trips completed for a given trip date.
func (repo *ReportRepo) CountTripsCompletedOn(ctx context.Context, branch, tripDate string) (int, error) {
	var n int
	err := repo.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM viajes
		WHERE estado_id = $1
		  AND fecha_viaje = $2::date
		  AND ($3 = '' OR sucursal = $3)
	`, trip.StatusCompleted.Code(), tripDate, branch).Scan(&n)
	return n, err
}

// NoteCountersByBranch returns delivered / not delivered / pending note
// counts across the branch's trips.
func (repo *ReportRepo) NoteCountersByBranch(ctx context.Context, branch string) (delivered, notDelivered, pending int, err error) {
	err = repo.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE g.estado_id = 4),
			count(*) FILTER (WHERE g.estado_id = 5),
			count(*) FILTER (WHERE g.estado_id = 3)
		FROM guias g
		JOIN viajes v ON v.id = g.viaje_id
		WHERE ($1 = '' OR v.sucursal = $1)
	`, branch).Scan(&delivered, &notDelivered, &pending)
	return delivered, notDelivered, pending, err
}
