package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medivault/api/internal/email"
	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/internal/repository"
	"github.com/medivault/api/pkg/auth"
	apperrors "github.com/medivault/api/pkg/errors"
	"github.com/medivault/api/pkg/logger"
	"github.com/medivault/api/pkg/metrics"
)

const (
	verificationTTL     = 30 * time.Second
	verificationCleanup = 5 * time.Minute
)

// RecordService is the record store: the single validation gate on
// record creation and the role-scoped query surface. No operation here
// lists records without a scope key.
type RecordService interface {
	Create(ctx context.Context, input *CreateInput, attachment *model.AttachmentRef) (*model.Record, error)
	ListForIdentity(ctx context.Context, identity *auth.Identity) ([]*model.Record, error)
	ListByPatient(ctx context.Context, identity *auth.Identity, patientIdentifier string) ([]*model.Record, error)
	Get(ctx context.Context, id uuid.UUID, identity *auth.Identity) (*model.Record, error)
	AuthorizeAttachment(ctx context.Context, identity *auth.Identity, fileName string) error
	VerifyPatient(ctx context.Context, patientIdentifier string) (*model.PatientVerification, error)
}

// CreateInput is the validated creation request after the HTTP layer
// has resolved dates and ids. Owner must agree with the caller's
// authenticated side; the handler enforces that before calling in.
type CreateInput struct {
	Title             string
	Date              time.Time
	Provider          string
	Doctor            string
	Type              string
	Category          string
	Notes             string
	Owner             model.RecordOwner
	PatientIdentifier string
	LabID             *uuid.UUID
}

type Service struct {
	recordRepo  repository.RecordRepository
	patientRepo repository.PatientRepository
	labRepo     repository.LabRepository
	emailSvc    email.Service
	verifyCache *gocache.Cache
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewService(
	recordRepo repository.RecordRepository,
	patientRepo repository.PatientRepository,
	labRepo repository.LabRepository,
	emailSvc email.Service,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		recordRepo:  recordRepo,
		patientRepo: patientRepo,
		labRepo:     labRepo,
		emailSvc:    emailSvc,
		verifyCache: gocache.New(verificationTTL, verificationCleanup),
		logger:      log,
		metrics:     m,
	}
}

// Create validates the owner/identifier agreement and persists the
// record. This is the only place that stops a lab from attaching a
// report to a non-existent or misspelled patient identifier.
func (s *Service) Create(ctx context.Context, input *CreateInput, attachment *model.AttachmentRef) (*model.Record, error) {
	if err := s.validate(ctx, input); err != nil {
		if attachment != nil {
			s.accountOrphan(attachment, input.PatientIdentifier, "validation failed after blob store")
		}
		return nil, err
	}

	record := &model.Record{
		ID:                uuid.New(),
		Title:             input.Title,
		RecordDate:        input.Date,
		Provider:          input.Provider,
		Doctor:            input.Doctor,
		Type:              input.Type,
		Category:          input.Category,
		Notes:             input.Notes,
		Owner:             input.Owner,
		PatientIdentifier: input.PatientIdentifier,
		LabID:             input.LabID,
	}
	if attachment != nil {
		record.FileName = &attachment.FileName
		record.FileSize = &attachment.FileSize
	}

	event, err := recordCreatedEvent(record)
	if err != nil {
		return nil, err
	}
	if err := s.recordRepo.Create(ctx, record, event); err != nil {
		if attachment != nil {
			s.accountOrphan(attachment, input.PatientIdentifier, "record insert failed after blob store")
		}
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	if record.Owner == model.OwnerLab {
		s.notifyPatient(ctx, record)
	}

	return record, nil
}

// accountOrphan records a blob whose row never materialized. The HTTP
// layer stores the upload before Create runs, so any failure past that
// point, a rejected input as much as a failed insert, strands the blob.
// Logged and counted, never fatal: the caller already gets the error.
func (s *Service) accountOrphan(attachment *model.AttachmentRef, patientID, msg string) {
	s.logger.Error(apperrors.ErrOrphanedAttachment, msg,
		"file_name", attachment.FileName,
		"patient_id", patientID)
	if s.metrics != nil {
		s.metrics.AttachmentsOrphaned.Inc()
	}
}

func (s *Service) validate(ctx context.Context, input *CreateInput) error {
	if !input.Owner.Valid() {
		return apperrors.Validation(fmt.Sprintf("owner must be %q or %q", model.OwnerPatient, model.OwnerLab))
	}
	if input.Title == "" {
		return apperrors.Validation("title is required")
	}
	if input.Date.IsZero() {
		return apperrors.Validation("date is required")
	}
	if input.PatientIdentifier == "" {
		return apperrors.Validation("patient identifier is required")
	}

	switch input.Owner {
	case model.OwnerPatient:
		if input.LabID != nil {
			return apperrors.Validation("patient-authored records cannot carry a lab id")
		}
	case model.OwnerLab:
		if input.LabID == nil {
			return apperrors.Validation("lab-authored records require a lab id")
		}
		// The verification handshake: the referenced patient must exist
		// at creation time.
		if _, err := s.VerifyPatient(ctx, input.PatientIdentifier); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.UnknownPatient(input.PatientIdentifier)
			}
			return err
		}
	}
	return nil
}

// ListForIdentity is the only listing exposed to end clients: the scope
// key comes from the authenticated identity, never from the request.
func (s *Service) ListForIdentity(ctx context.Context, identity *auth.Identity) ([]*model.Record, error) {
	switch identity.Role {
	case auth.RolePathLab:
		labID, err := uuid.Parse(identity.ScopeKey)
		if err != nil {
			return nil, apperrors.Validation("invalid lab scope key")
		}
		records, err := s.recordRepo.ListByLab(ctx, labID)
		if err != nil {
			return nil, fmt.Errorf("failed to list lab records: %w", err)
		}
		return records, nil
	case auth.RolePatient:
		records, err := s.recordRepo.ListByPatient(ctx, identity.ScopeKey)
		if err != nil {
			return nil, fmt.Errorf("failed to list patient records: %w", err)
		}
		return records, nil
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown role %q", identity.Role))
	}
}

// ListByPatient serves a patient re-reading their own records and a lab
// re-displaying records it issued for that patient. Patients may only
// pass their own identifier; for labs the result is filtered down to
// rows the lab itself created.
func (s *Service) ListByPatient(ctx context.Context, identity *auth.Identity, patientIdentifier string) ([]*model.Record, error) {
	switch identity.Role {
	case auth.RolePatient:
		if identity.ScopeKey != patientIdentifier {
			return nil, apperrors.NotFound("patient", nil)
		}
	case auth.RolePathLab:
		// fall through; filtered below
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown role %q", identity.Role))
	}

	records, err := s.recordRepo.ListByPatient(ctx, patientIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient records: %w", err)
	}

	if identity.Role == auth.RolePathLab {
		labID, err := uuid.Parse(identity.ScopeKey)
		if err != nil {
			return nil, apperrors.Validation("invalid lab scope key")
		}
		scoped := records[:0]
		for _, r := range records {
			if r.LabID != nil && *r.LabID == labID {
				scoped = append(scoped, r)
			}
		}
		records = scoped
	}

	return records, nil
}

// Get applies the same scoping as the listings before handing back a
// single row. A record outside the caller's scope reads as NotFound so
// its existence is not leaked.
func (s *Service) Get(ctx context.Context, id uuid.UUID, identity *auth.Identity) (*model.Record, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if !s.inScope(record, identity) {
		return nil, apperrors.NotFound("record", nil)
	}
	return record, nil
}

// AuthorizeAttachment checks that the caller is entitled to a record
// referencing the stored blob. Unreferenced or foreign blobs read as
// NotFound, same as a scoped record miss.
func (s *Service) AuthorizeAttachment(ctx context.Context, identity *auth.Identity, fileName string) error {
	record, err := s.recordRepo.GetByFileName(ctx, fileName)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("attachment", err)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve attachment owner: %w", err)
	}
	if !s.inScope(record, identity) {
		return apperrors.NotFound("attachment", nil)
	}
	return nil
}

func (s *Service) inScope(record *model.Record, identity *auth.Identity) bool {
	switch identity.Role {
	case auth.RolePatient:
		return record.PatientIdentifier == identity.ScopeKey
	case auth.RolePathLab:
		return record.LabID != nil && record.LabID.String() == identity.ScopeKey
	default:
		return false
	}
}

// VerifyPatient is the read-only identity confirmation a lab performs
// before creating a record. Hits are cached briefly; only non-sensitive
// fields leave this method.
func (s *Service) VerifyPatient(ctx context.Context, patientIdentifier string) (*model.PatientVerification, error) {
	if cached, ok := s.verifyCache.Get(patientIdentifier); ok {
		return cached.(*model.PatientVerification), nil
	}

	patient, err := s.patientRepo.GetByIdentifier(ctx, patientIdentifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify patient: %w", err)
	}

	verification := &model.PatientVerification{
		PatientIdentifier: patient.PatientIdentifier,
		FirstName:         patient.FirstName,
		LastName:          patient.LastName,
	}
	s.verifyCache.Set(patientIdentifier, verification, gocache.DefaultExpiration)
	return verification, nil
}

// notifyPatient is best effort; record creation never fails because a
// notification could not be sent.
func (s *Service) notifyPatient(ctx context.Context, record *model.Record) {
	patient, err := s.patientRepo.GetByIdentifier(ctx, record.PatientIdentifier)
	if err != nil {
		s.logger.Error(err, "failed to load patient for notification", "patient_id", record.PatientIdentifier)
		return
	}

	labName := "A laboratory"
	if record.LabID != nil {
		if lab, err := s.labRepo.GetByID(ctx, *record.LabID); err == nil {
			labName = lab.LabName
		}
	}

	if err := s.emailSvc.SendRecordNotification(ctx, patient.Email, patient.FirstName, labName, record.Title); err != nil {
		s.logger.Error(err, "failed to send record notification", "patient_id", record.PatientIdentifier)
	}
}

func recordCreatedEvent(record *model.Record) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"id":         record.ID.String(),
		"owner":      record.Owner,
		"patient_id": record.PatientIdentifier,
		"lab_id":     record.LabID,
		"title":      record.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record event: %w", err)
	}
	return &model.OutboxEvent{
		EventType: model.EventRecordCreated,
		Payload:   payload,
	}, nil
}
