package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of a job application.
type ApplicationStatus string

const (
	// ApplicationStatusDraft indicates the application was created but not yet submitted with a CV
	ApplicationStatusDraft ApplicationStatus = "draft"
	// ApplicationStatusPending indicates the application was submitted and awaits employer action
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusReviewing indicates the employer is actively reviewing the application
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	// ApplicationStatusAccepted indicates the employer accepted the candidate
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected indicates the employer rejected the candidate
	ApplicationStatusRejected ApplicationStatus = "rejected"
	// ApplicationStatusWithdrawn indicates the candidate withdrew the application
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusDraft, ApplicationStatusPending, ApplicationStatusReviewing,
		ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// ReapplyEligible reports whether an application in state s permits the
// candidate to create a fresh application for the same job. Rejected and
// withdrawn applications stay on record but no longer block re-application.
func (s ApplicationStatus) ReapplyEligible() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusWithdrawn
}

// CVRefKind discriminates the CV reference an application carries.
type CVRefKind string

const (
	// CVRefNone means no CV is attached yet
	CVRefNone CVRefKind = "none"
	// CVRefLibrary means the application references a CV record by id
	CVRefLibrary CVRefKind = "library"
	// CVRefUpload means the application carries a direct uploaded file URL
	CVRefUpload CVRefKind = "upload"
)

// CVReference is the per-application pointer to whichever artifact the
// candidate attached at submission time.
type CVReference struct {
	CVKind     CVRefKind  `gorm:"type:text;default:'none'" json:"cv_kind"`
	CVID       *uuid.UUID `gorm:"type:uuid" json:"cv_id,omitempty"`
	CVURL      string     `gorm:"type:text" json:"cv_url,omitempty"`
	CVFileName string     `gorm:"type:text" json:"cv_file_name,omitempty"`
}

// Application represents a job application record
type Application struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status    ApplicationStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	AppliedAt time.Time         `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	UpdatedAt time.Time         `gorm:"type:timestamp" json:"updated_at"`

	// CandidateID references CandidateUser.UserID
	CandidateID uuid.UUID     `gorm:"type:uuid;not null;index:idx_app_candidate_post" json:"candidate_id"`
	Candidate   CandidateUser `gorm:"foreignKey:CandidateID;references:UserID" json:"-"`

	// PostID references JobPost.ID
	PostID  uint    `gorm:"not null;index:idx_app_candidate_post" json:"post_id"`
	JobPost JobPost `gorm:"foreignKey:PostID;references:ID" json:"-"`

	// EmployerID is denormalized from the job post at creation time and must
	// never be empty: an application cannot exist for an ownerless job.
	EmployerID uuid.UUID `gorm:"type:uuid;not null" json:"employer_id"`

	CVReference
	CoverLetter string `gorm:"type:text" json:"cover_letter,omitempty"`
}
