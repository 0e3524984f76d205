package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/pkg/auth"
	apperrors "github.com/medivault/api/pkg/errors"
	"github.com/medivault/api/pkg/identifier"
	"github.com/medivault/api/pkg/logger"
	"github.com/medivault/api/pkg/security"
)

func testClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func newTestService(patients *mockPatientRepo, labs *mockLabRepo, outbox *mockOutboxRepo, mail *mockEmailService) *Service {
	log := logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Output: io.Discard,
	})
	return NewService(
		patients,
		labs,
		outbox,
		security.NewBcryptHasher(bcrypt.MinCost),
		identifier.NewGenerator(testClock),
		auth.NewJWTService("test-secret", time.Hour),
		mail,
		log,
	)
}

func TestRegisterPatient(t *testing.T) {
	patients := &mockPatientRepo{}
	outbox := &mockOutboxRepo{}
	svc := newTestService(patients, &mockLabRepo{}, outbox, &mockEmailService{})

	patient, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		FirstName: "Ann",
		LastName:  "Reyes",
		Email:     "ann@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)

	assert.Equal(t, "ann1700000000000", patient.PatientIdentifier)
	assert.Empty(t, patient.PasswordHash, "hash must not leave the service")
	require.Len(t, patients.Created, 1)
	assert.NotEmpty(t, patients.Created[0].PasswordHash, "stored row carries the hash")

	require.Len(t, outbox.Events, 1)
	assert.Equal(t, model.EventPatientRegistered, outbox.Events[0].EventType)
}

func TestRegisterSendsWelcomeEmail(t *testing.T) {
	mail := &mockEmailService{}
	svc := newTestService(&mockPatientRepo{}, &mockLabRepo{}, &mockOutboxRepo{}, mail)

	_, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		FirstName: "Ann",
		LastName:  "Reyes",
		Email:     "ann@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.RegisterLab(context.Background(), &model.RegisterLabRequest{
		LabName:       "CityLab",
		Email:         "lab@citylab.example",
		Password:      "supersecret",
		LicenseNumber: "LIC-42",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ann@example.com", "lab@citylab.example"}, mail.Welcomes)
}

func TestRegisterPatientDuplicateEmail(t *testing.T) {
	patients := &mockPatientRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*model.Patient, error) {
			return &model.Patient{Email: email}, nil
		},
	}
	svc := newTestService(patients, &mockLabRepo{}, &mockOutboxRepo{}, &mockEmailService{})

	_, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		FirstName: "Ann",
		LastName:  "Reyes",
		Email:     "ann@example.com",
		Password:  "supersecret",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrDuplicateEmail, appErr.Code)
	assert.Empty(t, patients.Created)
}

func TestRegisterPatientIdentifierCollisionRetries(t *testing.T) {
	calls := 0
	patients := &mockPatientRepo{
		CreateFunc: func(ctx context.Context, patient *model.Patient) error {
			calls++
			if calls == 1 {
				return &pq.Error{Code: "23505", Constraint: "patients_patient_identifier_key"}
			}
			return nil
		},
	}
	svc := newTestService(patients, &mockLabRepo{}, &mockOutboxRepo{}, &mockEmailService{})

	patient, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		FirstName: "Ann",
		LastName:  "Reyes",
		Email:     "ann@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, strings.HasPrefix(patient.PatientIdentifier, "ann"))
}

func TestRegisterLab(t *testing.T) {
	labs := &mockLabRepo{}
	outbox := &mockOutboxRepo{}
	svc := newTestService(&mockPatientRepo{}, labs, outbox, &mockEmailService{})

	lab, err := svc.RegisterLab(context.Background(), &model.RegisterLabRequest{
		LabName:       "CityLab",
		Email:         "lab@example.com",
		Password:      "supersecret",
		LicenseNumber: "LIC-42",
	})
	require.NoError(t, err)

	assert.Empty(t, lab.PasswordHash)
	require.Len(t, labs.Created, 1)
	require.Len(t, outbox.Events, 1)
	assert.Equal(t, model.EventLabRegistered, outbox.Events[0].EventType)
}

func TestAuthenticatePatient(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("supersecret")
	require.NoError(t, err)

	stored := &model.Patient{
		PatientIdentifier: "ann1700000000000",
		FirstName:         "Ann",
		Email:             "ann@example.com",
		PasswordHash:      hash,
	}
	patients := &mockPatientRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*model.Patient, error) {
			return stored, nil
		},
	}
	svc := newTestService(patients, &mockLabRepo{}, &mockOutboxRepo{}, &mockEmailService{})

	session, err := svc.Authenticate(context.Background(), auth.RolePatient, "ann@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "patient", session.Role)
	assert.Empty(t, session.Patient.PasswordHash)

	tokens := auth.NewJWTService("test-secret", time.Hour)
	identity, err := tokens.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RolePatient, identity.Role)
	assert.Equal(t, "ann1700000000000", identity.ScopeKey)
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("supersecret")
	require.NoError(t, err)

	patients := &mockPatientRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*model.Patient, error) {
			if email == "ann@example.com" {
				return &model.Patient{Email: email, PasswordHash: hash}, nil
			}
			return nil, assert.AnError
		},
	}
	svc := newTestService(patients, &mockLabRepo{}, &mockOutboxRepo{}, &mockEmailService{})

	_, missingErr := svc.Authenticate(context.Background(), auth.RolePatient, "nobody@example.com", "supersecret")
	_, wrongErr := svc.Authenticate(context.Background(), auth.RolePatient, "ann@example.com", "wrongpassword")

	require.Error(t, missingErr)
	require.Error(t, wrongErr)
	assert.Equal(t, missingErr.Error(), wrongErr.Error())

	var appErr *apperrors.AppError
	require.ErrorAs(t, missingErr, &appErr)
	assert.Equal(t, apperrors.ErrInvalidCredentials, appErr.Code)
}

func TestAuthenticateLabScopeKey(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("supersecret")
	require.NoError(t, err)

	stored := &model.Lab{
		LabName:      "CityLab",
		Email:        "lab@example.com",
		PasswordHash: hash,
	}
	labs := &mockLabRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*model.Lab, error) {
			return stored, nil
		},
	}
	svc := newTestService(&mockPatientRepo{}, labs, &mockOutboxRepo{}, &mockEmailService{})

	session, err := svc.Authenticate(context.Background(), auth.RolePathLab, "lab@example.com", "supersecret")
	require.NoError(t, err)

	tokens := auth.NewJWTService("test-secret", time.Hour)
	identity, err := tokens.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RolePathLab, identity.Role)
	assert.Equal(t, stored.ID.String(), identity.ScopeKey)
}
