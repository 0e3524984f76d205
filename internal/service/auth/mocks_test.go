package auth

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/medivault/api/internal/model"
)

type mockPatientRepo struct {
	CreateFunc          func(ctx context.Context, patient *model.Patient) error
	GetByEmailFunc      func(ctx context.Context, email string) (*model.Patient, error)
	GetByIdentifierFunc func(ctx context.Context, patientIdentifier string) (*model.Patient, error)

	Created []*model.Patient
}

func (m *mockPatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	stored := *patient
	m.Created = append(m.Created, &stored)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, patient)
	}
	return nil
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

func (m *mockPatientRepo) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, sql.ErrNoRows
}

func (m *mockPatientRepo) GetByIdentifier(ctx context.Context, patientIdentifier string) (*model.Patient, error) {
	if m.GetByIdentifierFunc != nil {
		return m.GetByIdentifierFunc(ctx, patientIdentifier)
	}
	return nil, sql.ErrNoRows
}

func (m *mockPatientRepo) Update(ctx context.Context, patient *model.Patient) error {
	return nil
}

type mockLabRepo struct {
	CreateFunc     func(ctx context.Context, lab *model.Lab) error
	GetByEmailFunc func(ctx context.Context, email string) (*model.Lab, error)

	Created []*model.Lab
}

func (m *mockLabRepo) Create(ctx context.Context, lab *model.Lab) error {
	stored := *lab
	m.Created = append(m.Created, &stored)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lab)
	}
	return nil
}

func (m *mockLabRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
	return nil, sql.ErrNoRows
}

func (m *mockLabRepo) GetByEmail(ctx context.Context, email string) (*model.Lab, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, sql.ErrNoRows
}

func (m *mockLabRepo) Update(ctx context.Context, lab *model.Lab) error {
	return nil
}

type mockOutboxRepo struct {
	CreateFunc func(ctx context.Context, event *model.OutboxEvent) error

	Events []*model.OutboxEvent
}

func (m *mockOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	m.Events = append(m.Events, event)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *mockOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	return nil
}

type mockEmailService struct {
	Welcomes []string
}

func (m *mockEmailService) SendRecordNotification(ctx context.Context, to, patientName, labName, recordTitle string) error {
	return nil
}

func (m *mockEmailService) SendWelcome(ctx context.Context, to, name string) error {
	m.Welcomes = append(m.Welcomes, to)
	return nil
}
