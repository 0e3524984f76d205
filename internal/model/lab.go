package model

import (
	"time"

	"github.com/google/uuid"
)

// Lab is an issuing organization. Same lifecycle shape as Patient but a
// distinct table and namespace; an email may exist in both.
type Lab struct {
	ID            uuid.UUID `db:"id" json:"id"`
	LabName       string    `db:"lab_name" json:"lab_name"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Phone         string    `db:"phone" json:"phone"`
	Address       string    `db:"address" json:"address"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterLabRequest struct {
	LabName       string `json:"labName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	LicenseNumber string `json:"licenseNumber" binding:"required"`
	Description   string `json:"description"`
}

type UpdateLabRequest struct {
	LabName     *string `json:"lab_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}
