package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

type patientRepository struct {
	pool *pgxpool.Pool
}

// NewPatientRepository creates the Postgres-backed patient store.
func NewPatientRepository(pool *pgxpool.Pool) domain.PatientStore {
	return &patientRepository{pool: pool}
}

func (r *patientRepository) GetPatient(ctx context.Context, patientID string) (*domain.PatientRecord, error) {
	query := `
		SELECT id, full_name, surgery_date, surgery_type, lens_type,
		       eye_operated, medications, post_op_schedule, notes
		FROM patients
		WHERE id = $1
	`
	var p domain.PatientRecord
	err := r.pool.QueryRow(ctx, query, patientID).Scan(
		&p.ID, &p.FullName, &p.SurgeryDate, &p.SurgeryType, &p.LensType,
		&p.EyeOperated, &p.Medications, &p.PostOpSchedule, &p.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	return &p, nil
}
