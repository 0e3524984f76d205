package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medivault/api/internal/model"
	"github.com/medivault/api/internal/repository"
)

type labRepository struct {
	db *sqlx.DB
}

func NewLabRepository(db *sqlx.DB) repository.LabRepository {
	return &labRepository{db: db}
}

func (r *labRepository) Create(ctx context.Context, lab *model.Lab) error {
	query := `
		INSERT INTO labs (id, lab_name, email, password_hash, phone, address, license_number, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	lab.CreatedAt = time.Now()
	lab.UpdatedAt = lab.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		lab.ID,
		lab.LabName,
		lab.Email,
		lab.PasswordHash,
		lab.Phone,
		lab.Address,
		lab.LicenseNumber,
		lab.Description,
		lab.CreatedAt,
		lab.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab: %w", err)
	}
	return nil
}

func (r *labRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lab, error) {
	query := `SELECT * FROM labs WHERE id = $1`
	var lab model.Lab
	if err := r.db.GetContext(ctx, &lab, query, id); err != nil {
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}
	return &lab, nil
}

func (r *labRepository) GetByEmail(ctx context.Context, email string) (*model.Lab, error) {
	query := `SELECT * FROM labs WHERE email = $1`
	var lab model.Lab
	if err := r.db.GetContext(ctx, &lab, query, email); err != nil {
		return nil, fmt.Errorf("failed to get lab by email: %w", err)
	}
	return &lab, nil
}

func (r *labRepository) Update(ctx context.Context, lab *model.Lab) error {
	query := `
		UPDATE labs SET lab_name = $1, email = $2, phone = $3, address = $4, description = $5, updated_at = $6
		WHERE id = $7
	`
	lab.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		lab.LabName,
		lab.Email,
		lab.Phone,
		lab.Address,
		lab.Description,
		lab.UpdatedAt,
		lab.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update lab: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update lab %s: %w", lab.ID, sql.ErrNoRows)
	}
	return nil
}
