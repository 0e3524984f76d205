package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medivault/api/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	GetByIdentifier(ctx context.Context, patientIdentifier string) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
}

type LabRepository interface {
	Create(ctx context.Context, lab *model.Lab) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lab, error)
	GetByEmail(ctx context.Context, email string) (*model.Lab, error)
	Update(ctx context.Context, lab *model.Lab) error
}

type RecordRepository interface {
	// Create inserts the record row and its outbox event in one
	// transaction; the row is visible to the scoped listings as soon as
	// the commit returns. event may be nil.
	Create(ctx context.Context, record *model.Record, event *model.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Record, error)
	// GetByFileName resolves the record a stored blob belongs to, for
	// download entitlement checks.
	GetByFileName(ctx context.Context, fileName string) (*model.Record, error)
	// ListByLab returns records issued by the lab, newest first, with
	// patient names joined in.
	ListByLab(ctx context.Context, labID uuid.UUID) ([]*model.Record, error)
	// ListByPatient returns records owned by the patient identifier,
	// newest first, with the issuing lab's display name joined in.
	ListByPatient(ctx context.Context, patientIdentifier string) ([]*model.Record, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
}
