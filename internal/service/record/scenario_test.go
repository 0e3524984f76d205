package record

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/pkg/auth"
	"github.com/medivault/api/pkg/identifier"
	"github.com/medivault/api/pkg/logger"
)

// memoryRecordRepo keeps created rows and answers the scoped list
// queries over them, so listing tests exercise real filtering instead
// of canned responses.
type memoryRecordRepo struct {
	mu   sync.Mutex
	rows []*model.Record
}

func (m *memoryRecordRepo) Create(ctx context.Context, record *model.Record, event *model.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, record)
	return nil
}

func (m *memoryRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryRecordRepo) GetByFileName(ctx context.Context, fileName string) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.FileName != nil && *r.FileName == fileName {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryRecordRepo) ListByLab(ctx context.Context, labID uuid.UUID) ([]*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Record
	for _, r := range m.rows {
		if r.LabID != nil && *r.LabID == labID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRecordRepo) ListByPatient(ctx context.Context, patientIdentifier string) ([]*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Record
	for _, r := range m.rows {
		if r.PatientIdentifier == patientIdentifier {
			out = append(out, r)
		}
	}
	return out, nil
}

type memoryPatientRepo struct {
	patients map[string]*model.Patient
}

func (m *memoryPatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	m.patients[patient.PatientIdentifier] = patient
	return nil
}

func (m *memoryPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

func (m *memoryPatientRepo) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}

func (m *memoryPatientRepo) GetByIdentifier(ctx context.Context, patientIdentifier string) (*model.Patient, error) {
	if p, ok := m.patients[patientIdentifier]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryPatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }

// TestLabRecordVisibleToBothSidesOnly walks the full sharing flow: a
// lab publishes a record with an attachment under a patient's
// identifier, the record shows up in both scoped listings with the
// same stored file name, and an unrelated patient sees nothing.
func TestLabRecordVisibleToBothSidesOnly(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1770000000000) }
	gen := identifier.NewGenerator(clock)
	annID := gen.Derive("Ann")
	benID := gen.Derive("Ben")
	require.True(t, strings.HasPrefix(annID, "ann"))

	patients := &memoryPatientRepo{patients: map[string]*model.Patient{
		annID: {PatientIdentifier: annID, FirstName: "Ann", LastName: "Reyes", Email: "ann@example.com"},
		benID: {PatientIdentifier: benID, FirstName: "Ben", LastName: "Okafor", Email: "ben@example.com"},
	}}
	labID := uuid.New()
	labs := &mockLabRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
			return &model.Lab{ID: labID, LabName: "CityLab"}, nil
		},
	}
	repo := &memoryRecordRepo{}
	mail := &mockEmailService{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, patients, labs, mail, log, nil)

	created, err := svc.Create(context.Background(), labInput(annID, labID), &model.AttachmentRef{
		FileName: "1770000000000-results.pdf",
		FileSize: 2048,
	})
	require.NoError(t, err)

	labView, err := svc.ListForIdentity(context.Background(), &auth.Identity{
		Role:     auth.RolePathLab,
		ScopeKey: labID.String(),
	})
	require.NoError(t, err)
	require.Len(t, labView, 1)

	annView, err := svc.ListForIdentity(context.Background(), &auth.Identity{
		Role:     auth.RolePatient,
		ScopeKey: annID,
	})
	require.NoError(t, err)
	require.Len(t, annView, 1)
	require.NotNil(t, annView[0].FileName)
	assert.Equal(t, *created.FileName, *annView[0].FileName)
	assert.Equal(t, *labView[0].FileName, *annView[0].FileName)

	benView, err := svc.ListForIdentity(context.Background(), &auth.Identity{
		Role:     auth.RolePatient,
		ScopeKey: benID,
	})
	require.NoError(t, err)
	assert.Empty(t, benView)
}

// TestConcurrentCreatesStayIsolated issues two creates for the same
// lab against different patients at once and checks neither row picks
// up the other's scope values.
func TestConcurrentCreatesStayIsolated(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1770000000000) }
	gen := identifier.NewGenerator(clock)
	annID := gen.Derive("Ann")
	benID := gen.Derive("Ben")

	patients := &memoryPatientRepo{patients: map[string]*model.Patient{
		annID: {PatientIdentifier: annID, FirstName: "Ann", Email: "ann@example.com"},
		benID: {PatientIdentifier: benID, FirstName: "Ben", Email: "ben@example.com"},
	}}
	labID := uuid.New()
	labs := &mockLabRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
			return &model.Lab{ID: labID, LabName: "CityLab"}, nil
		},
	}
	repo := &memoryRecordRepo{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, patients, labs, &mockEmailService{}, log, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, patientID := range []string{annID, benID} {
		wg.Add(1)
		go func(i int, patientID string) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), labInput(patientID, labID), nil)
		}(i, patientID)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	annRows, err := repo.ListByPatient(context.Background(), annID)
	require.NoError(t, err)
	benRows, err := repo.ListByPatient(context.Background(), benID)
	require.NoError(t, err)
	require.Len(t, annRows, 1)
	require.Len(t, benRows, 1)
	assert.NotEqual(t, annRows[0].ID, benRows[0].ID)
	assert.Equal(t, labID, *annRows[0].LabID)
	assert.Equal(t, labID, *benRows[0].LabID)
}
