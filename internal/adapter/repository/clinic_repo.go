package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

type clinicRepository struct {
	pool *pgxpool.Pool
}

// NewClinicRepository creates the Postgres-backed clinic store.
func NewClinicRepository(pool *pgxpool.Pool) domain.ClinicStore {
	return &clinicRepository{pool: pool}
}

func (r *clinicRepository) GetClinic(ctx context.Context, clinicID string) (*domain.ClinicRecord, error) {
	query := `
		SELECT id, name, address, phone, opening_hours, surgeons, services
		FROM clinics
		WHERE id = $1
	`
	var c domain.ClinicRecord
	err := r.pool.QueryRow(ctx, query, clinicID).Scan(
		&c.ID, &c.Name, &c.Address, &c.Phone, &c.OpeningHours, &c.Surgeons, &c.Services,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("clinic %s: %w", clinicID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query clinic: %w", err)
	}
	return &c, nil
}
