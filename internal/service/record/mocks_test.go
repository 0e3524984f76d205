package record

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/medivault/api/internal/model"
)

type mockRecordRepo struct {
	CreateFunc        func(ctx context.Context, record *model.Record, event *model.OutboxEvent) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*model.Record, error)
	GetByFileNameFunc func(ctx context.Context, fileName string) (*model.Record, error)
	ListByLabFunc     func(ctx context.Context, labID uuid.UUID) ([]*model.Record, error)
	ListByPatientFunc func(ctx context.Context, patientIdentifier string) ([]*model.Record, error)

	Created []*model.Record
	Events  []*model.OutboxEvent
}

func (m *mockRecordRepo) Create(ctx context.Context, record *model.Record, event *model.OutboxEvent) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, record, event); err != nil {
			return err
		}
	}
	m.Created = append(m.Created, record)
	m.Events = append(m.Events, event)
	return nil
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Record, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockRecordRepo) GetByFileName(ctx context.Context, fileName string) (*model.Record, error) {
	if m.GetByFileNameFunc != nil {
		return m.GetByFileNameFunc(ctx, fileName)
	}
	return nil, sql.ErrNoRows
}

func (m *mockRecordRepo) ListByLab(ctx context.Context, labID uuid.UUID) ([]*model.Record, error) {
	if m.ListByLabFunc != nil {
		return m.ListByLabFunc(ctx, labID)
	}
	return nil, nil
}

func (m *mockRecordRepo) ListByPatient(ctx context.Context, patientIdentifier string) ([]*model.Record, error) {
	if m.ListByPatientFunc != nil {
		return m.ListByPatientFunc(ctx, patientIdentifier)
	}
	return nil, nil
}

type mockPatientRepo struct {
	GetByIdentifierFunc func(ctx context.Context, patientIdentifier string) (*model.Patient, error)

	IdentifierLookups int
}

func (m *mockPatientRepo) Create(ctx context.Context, patient *model.Patient) error { return nil }

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

func (m *mockPatientRepo) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

func (m *mockPatientRepo) GetByIdentifier(ctx context.Context, patientIdentifier string) (*model.Patient, error) {
	m.IdentifierLookups++
	if m.GetByIdentifierFunc != nil {
		return m.GetByIdentifierFunc(ctx, patientIdentifier)
	}
	return nil, sql.ErrNoRows
}

func (m *mockPatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }

type mockLabRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*model.Lab, error)
}

func (m *mockLabRepo) Create(ctx context.Context, lab *model.Lab) error { return nil }

func (m *mockLabRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockLabRepo) GetByEmail(ctx context.Context, email string) (*model.Lab, error) {
	return nil, sql.ErrNoRows
}

func (m *mockLabRepo) Update(ctx context.Context, lab *model.Lab) error { return nil }

type mockEmailService struct {
	RecordNotifications []string
}

func (m *mockEmailService) SendRecordNotification(ctx context.Context, to, patientName, labName, recordTitle string) error {
	m.RecordNotifications = append(m.RecordNotifications, to)
	return nil
}

func (m *mockEmailService) SendWelcome(ctx context.Context, to, name string) error {
	return nil
}
