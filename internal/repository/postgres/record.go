package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/internal/repository"
)

type recordRepository struct {
	BaseRepository
}

func NewRecordRepository(db *sqlx.DB) repository.RecordRepository {
	return &recordRepository{NewBaseRepository(db)}
}

// Create inserts the record and its outbox event atomically. A failure
// anywhere rolls the whole transaction back, so a partially committed
// record row can never exist.
func (r *recordRepository) Create(ctx context.Context, record *model.Record, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO records (
				id, title, record_date, provider, doctor, record_type,
				category, notes, file_name, file_size, owner,
				patient_identifier, lab_id, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		record.CreatedAt = time.Now()

		if _, err := tx.ExecContext(ctx, query,
			record.ID,
			record.Title,
			record.RecordDate,
			record.Provider,
			record.Doctor,
			record.Type,
			record.Category,
			record.Notes,
			record.FileName,
			record.FileSize,
			record.Owner,
			record.PatientIdentifier,
			record.LabID,
			record.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}

		if event == nil {
			return nil
		}
		return createOutboxEventTx(ctx, tx, event)
	})
}

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Record, error) {
	query := `SELECT * FROM records WHERE id = $1`
	var record model.Record
	if err := r.GetDB().GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &record, nil
}

func (r *recordRepository) GetByFileName(ctx context.Context, fileName string) (*model.Record, error) {
	query := `SELECT * FROM records WHERE file_name = $1`
	var record model.Record
	if err := r.GetDB().GetContext(ctx, &record, query, fileName); err != nil {
		return nil, fmt.Errorf("failed to get record by file name: %w", err)
	}
	return &record, nil
}

func (r *recordRepository) ListByLab(ctx context.Context, labID uuid.UUID) ([]*model.Record, error) {
	query := `
		SELECT r.*, p.first_name, p.last_name
		FROM records r
		JOIN patients p ON r.patient_identifier = p.patient_identifier
		WHERE r.lab_id = $1
		ORDER BY r.created_at DESC
	`
	var records []*model.Record
	if err := r.GetDB().SelectContext(ctx, &records, query, labID); err != nil {
		return nil, fmt.Errorf("failed to list lab records: %w", err)
	}
	return records, nil
}

func (r *recordRepository) ListByPatient(ctx context.Context, patientIdentifier string) ([]*model.Record, error) {
	query := `
		SELECT r.*, l.lab_name
		FROM records r
		LEFT JOIN labs l ON r.lab_id = l.id
		WHERE r.patient_identifier = $1
		ORDER BY r.created_at DESC
	`
	var records []*model.Record
	if err := r.GetDB().SelectContext(ctx, &records, query, patientIdentifier); err != nil {
		return nil, fmt.Errorf("failed to list patient records: %w", err)
	}
	return records, nil
}
