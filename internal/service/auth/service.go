package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/medivault/api/internal/email"
	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/internal/repository"
	"github.com/medivault/api/internal/repository/postgres"
	"github.com/medivault/api/pkg/auth"
	apperrors "github.com/medivault/api/pkg/errors"
	"github.com/medivault/api/pkg/identifier"
	"github.com/medivault/api/pkg/logger"
	"github.com/medivault/api/pkg/security"
)

// AuthService is the credential store: it registers the two principal
// kinds in their independent namespaces and performs the single
// credential check. No tokens are refreshed or revoked here; the
// returned session is the whole identity carrier.
type AuthService interface {
	RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error)
	RegisterLab(ctx context.Context, req *model.RegisterLabRequest) (*model.Lab, error)
	Authenticate(ctx context.Context, role auth.Role, email, password string) (*model.Session, error)
}

type Service struct {
	patientRepo repository.PatientRepository
	labRepo     repository.LabRepository
	outboxRepo  repository.OutboxRepository
	hasher      security.PasswordHasher
	idGen       *identifier.Generator
	tokens      auth.TokenService
	emailSvc    email.Service
	logger      *logger.Logger
}

func NewService(
	patientRepo repository.PatientRepository,
	labRepo repository.LabRepository,
	outboxRepo repository.OutboxRepository,
	hasher security.PasswordHasher,
	idGen *identifier.Generator,
	tokens auth.TokenService,
	emailSvc email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		patientRepo: patientRepo,
		labRepo:     labRepo,
		outboxRepo:  outboxRepo,
		hasher:      hasher,
		idGen:       idGen,
		tokens:      tokens,
		emailSvc:    emailSvc,
		logger:      log,
	}
}

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	if existing, _ := s.patientRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.DuplicateEmail("patient")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	patient := &model.Patient{
		ID:                uuid.New(),
		PatientIdentifier: s.idGen.Derive(req.FirstName),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PasswordHash:      hash,
	}

	err = s.patientRepo.Create(ctx, patient)
	if postgres.IsUniqueViolation(err, "patients_patient_identifier_key") {
		// Millisecond resolution makes this astronomically unlikely;
		// one retry with a fresh timestamp covers it.
		patient.PatientIdentifier = s.idGen.Derive(req.FirstName)
		err = s.patientRepo.Create(ctx, patient)
	}
	if postgres.IsUniqueViolation(err, "patients_email_key") {
		return nil, apperrors.DuplicateEmail("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}

	s.emitEvent(ctx, model.EventPatientRegistered, map[string]string{
		"id":         patient.ID.String(),
		"patient_id": patient.PatientIdentifier,
	})
	if err := s.emailSvc.SendWelcome(ctx, patient.Email, patient.FirstName); err != nil {
		s.logger.Warn("failed to send welcome email", "email", patient.Email)
	}

	patient.PasswordHash = ""
	return patient, nil
}

func (s *Service) RegisterLab(ctx context.Context, req *model.RegisterLabRequest) (*model.Lab, error) {
	if existing, _ := s.labRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.DuplicateEmail("lab")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	lab := &model.Lab{
		ID:            uuid.New(),
		LabName:       req.LabName,
		Email:         req.Email,
		PasswordHash:  hash,
		Phone:         req.Phone,
		Address:       req.Address,
		LicenseNumber: req.LicenseNumber,
		Description:   req.Description,
	}

	err = s.labRepo.Create(ctx, lab)
	if postgres.IsUniqueViolation(err, "labs_email_key") {
		return nil, apperrors.DuplicateEmail("lab")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register lab: %w", err)
	}

	s.emitEvent(ctx, model.EventLabRegistered, map[string]string{
		"id":       lab.ID.String(),
		"lab_name": lab.LabName,
	})
	if err := s.emailSvc.SendWelcome(ctx, lab.Email, lab.LabName); err != nil {
		s.logger.Warn("failed to send welcome email", "email", lab.Email)
	}

	lab.PasswordHash = ""
	return lab, nil
}

// Authenticate performs the single credential check for either
// namespace. A missing email and a wrong password are deliberately
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, role auth.Role, email, password string) (*model.Session, error) {
	switch role {
	case auth.RolePatient:
		return s.authenticatePatient(ctx, email, password)
	case auth.RolePathLab:
		return s.authenticateLab(ctx, email, password)
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown namespace %q", role))
	}
}

func (s *Service) authenticatePatient(ctx context.Context, email, password string) (*model.Session, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.InvalidCredentials()
	}
	if err := s.hasher.Compare(patient.PasswordHash, password); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Generate(auth.Identity{
		PrincipalID: patient.ID.String(),
		Role:        auth.RolePatient,
		ScopeKey:    patient.PatientIdentifier,
		Email:       patient.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	patient.PasswordHash = ""
	return &model.Session{
		Token:   token,
		Role:    string(auth.RolePatient),
		Patient: patient,
	}, nil
}

func (s *Service) authenticateLab(ctx context.Context, email, password string) (*model.Session, error) {
	lab, err := s.labRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.InvalidCredentials()
	}
	if err := s.hasher.Compare(lab.PasswordHash, password); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Generate(auth.Identity{
		PrincipalID: lab.ID.String(),
		Role:        auth.RolePathLab,
		ScopeKey:    lab.ID.String(),
		Email:       lab.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	lab.PasswordHash = ""
	return &model.Session{
		Token: token,
		Role:  string(auth.RolePathLab),
		Lab:   lab,
	}, nil
}

// emitEvent enqueues an outbox event; registration never fails because
// the event could not be written.
func (s *Service) emitEvent(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}
	if err := s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue outbox event", "event_type", eventType)
	}
}
