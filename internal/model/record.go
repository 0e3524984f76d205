package model

import (
	"time"

	"github.com/google/uuid"
)

// RecordOwner discriminates who authored a record. It must agree with
// which identifiers are populated: patient-authored rows have no lab_id,
// lab-authored rows carry both patient_identifier and lab_id.
type RecordOwner string

const (
	OwnerPatient RecordOwner = "patient"
	OwnerLab     RecordOwner = "lab"
)

func (o RecordOwner) Valid() bool {
	return o == OwnerPatient || o == OwnerLab
}

// Record is the single document row shared by both principal kinds.
// PatientIdentifier references Patient.PatientIdentifier by value, not
// by internal id. Records are write-once; there is no update path.
type Record struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	Title             string      `db:"title" json:"title"`
	RecordDate        time.Time   `db:"record_date" json:"date"`
	Provider          string      `db:"provider" json:"provider"`
	Doctor            string      `db:"doctor" json:"doctor"`
	Type              string      `db:"record_type" json:"type"`
	Category          string      `db:"category" json:"category"`
	Notes             string      `db:"notes" json:"notes"`
	FileName          *string     `db:"file_name" json:"file_name,omitempty"`
	FileSize          *int64      `db:"file_size" json:"file_size,omitempty"`
	Owner             RecordOwner `db:"owner" json:"owner"`
	PatientIdentifier string      `db:"patient_identifier" json:"patient_id"`
	LabID             *uuid.UUID  `db:"lab_id" json:"lab_id,omitempty"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`

	// Join-only fields, populated by the scoped listing queries.
	LabName          *string `db:"lab_name" json:"lab_name,omitempty"`
	PatientFirstName *string `db:"first_name" json:"patient_first_name,omitempty"`
	PatientLastName  *string `db:"last_name" json:"patient_last_name,omitempty"`
}

// CreateRecordRequest is the multipart form a caller submits. The file
// part travels separately; owner is the caller's own side and must
// match the authenticated identity.
type CreateRecordRequest struct {
	Title     string `form:"title" binding:"required"`
	Date      string `form:"date" binding:"required"`
	Provider  string `form:"provider"`
	Doctor    string `form:"doctor"`
	Type      string `form:"type"`
	Category  string `form:"category"`
	Notes     string `form:"notes"`
	Owner     string `form:"owner" binding:"required"`
	PatientID string `form:"patient_id"`
	LabID     string `form:"lab_id"`
}

// AttachmentRef is the metadata embedded on a Record when a payload was
// stored alongside it.
type AttachmentRef struct {
	FileName string
	FileSize int64
}
