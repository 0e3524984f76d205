package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/internal/repository"
	apperrors "github.com/medivault/api/pkg/errors"
)

// ProfileService reads and updates principal profiles. Updates go
// through the request whitelists only; the credential hash and the
// patient identifier are never mutable here.
type ProfileService interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	GetLab(ctx context.Context, id uuid.UUID) (*model.Lab, error)
	UpdateLab(ctx context.Context, id uuid.UUID, req *model.UpdateLabRequest) (*model.Lab, error)
}

type Service struct {
	patientRepo repository.PatientRepository
	labRepo     repository.LabRepository
}

func NewService(patientRepo repository.PatientRepository, labRepo repository.LabRepository) *Service {
	return &Service{patientRepo: patientRepo, labRepo: labRepo}
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	patient.PasswordHash = ""
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	patient.PasswordHash = ""
	return patient, nil
}

func (s *Service) GetLab(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
	lab, err := s.labRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("lab", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}
	lab.PasswordHash = ""
	return lab, nil
}

func (s *Service) UpdateLab(ctx context.Context, id uuid.UUID, req *model.UpdateLabRequest) (*model.Lab, error) {
	lab, err := s.labRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("lab", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	if req.LabName != nil {
		lab.LabName = *req.LabName
	}
	if req.Email != nil {
		lab.Email = *req.Email
	}
	if req.Phone != nil {
		lab.Phone = *req.Phone
	}
	if req.Address != nil {
		lab.Address = *req.Address
	}
	if req.Description != nil {
		lab.Description = *req.Description
	}

	if err := s.labRepo.Update(ctx, lab); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("lab", err)
		}
		return nil, fmt.Errorf("failed to update lab: %w", err)
	}
	lab.PasswordHash = ""
	return lab, nil
}
