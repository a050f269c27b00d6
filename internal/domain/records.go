package domain

import (
	"context"
	"time"
)

// ClinicRecord is the sub-record of a clinic relevant to answering
// patient questions. The owning CRUD service manages the full record.
type ClinicRecord struct {
	ID           string
	Name         string
	Address      string
	Phone        string
	OpeningHours string
	Surgeons     []string
	Services     []string
	UpdatedAt    time.Time
}

// PatientRecord is the sub-record of a patient relevant to answering
// questions about their own care.
type PatientRecord struct {
	ID             string
	FullName       string
	SurgeryDate    *time.Time
	SurgeryType    string
	LensType       string
	EyeOperated    string
	Medications    []string
	PostOpSchedule []string
	Notes          string
	UpdatedAt      time.Time
}

// ClinicStore retrieves clinic records by ID. Returns ErrNotFound when
// the clinic does not exist.
type ClinicStore interface {
	GetClinic(ctx context.Context, id string) (*ClinicRecord, error)
}

// PatientStore retrieves patient records by ID. Returns ErrNotFound
// when the patient does not exist.
type PatientStore interface {
	GetPatient(ctx context.Context, id string) (*PatientRecord, error)
}

// CacheInvalidator drops cached entries after out-of-band record
// updates so the next lookup reads through to the store.
type CacheInvalidator interface {
	InvalidateClinic(id string)
	InvalidatePatient(id string)
}
