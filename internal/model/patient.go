package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is one of the two principal kinds. It is not a subtype of any
// shared user model; it meets Lab only at the Record join point.
// PatientIdentifier is the externally shared key labs use to address
// records to this patient. It is derived once at registration and never
// regenerated.
type Patient struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PatientIdentifier string    `db:"patient_identifier" json:"patient_id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterPatientRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// UpdatePatientRequest whitelists the mutable profile fields. The
// credential hash has no field here and is stripped again at the
// service layer should a caller smuggle one in.
type UpdatePatientRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
}

// PatientVerification is the read-only identity confirmation a lab
// performs before attaching a record. Only non-sensitive fields.
type PatientVerification struct {
	PatientIdentifier string `db:"patient_identifier" json:"patient_id"`
	FirstName         string `db:"first_name" json:"first_name"`
	LastName          string `db:"last_name" json:"last_name"`
}
