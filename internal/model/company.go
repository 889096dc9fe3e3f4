package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

var (
	// StatusPending indicates a company registration is awaiting admin review
	StatusPending = "pending"
	// StatusVerified indicates an admin verified the company
	StatusVerified = "verified"
	// StatusRejected indicates an admin rejected the company registration
	StatusRejected = "rejected"
)

// EditableCompanyInfo is the part of a company profile the owner may edit
type EditableCompanyInfo struct {
	Name     string  `gorm:"type:text" json:"name"`
	Overview string  `gorm:"type:text" json:"overview"`
	Industry string  `gorm:"type:text" json:"industry"`
	Website  string  `gorm:"type:text" json:"website"`
	Size     *string `check:"size IN ('S', 'M', 'L')" json:"size"`
}

// CompanyUser is the profile record for an employer-side user
type CompanyUser struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"user"`
	EditableCompanyInfo
	VerifiedStatus string    `gorm:"type:text;default:'pending'" json:"verified_status"`
	LogoURL        string    `gorm:"type:text" json:"logo_url"`
	BannerURL      string    `gorm:"type:text" json:"banner_url"`
	JobPost        []JobPost `gorm:"foreignKey:CompanyUserID;references:UserID" json:"job_post,omitempty"`
}

// CompanyRefKind discriminates the two wire shapes a company field may take.
type CompanyRefKind string

const (
	// CompanyRefReference means the payload carried only a company user id
	CompanyRefReference CompanyRefKind = "reference"
	// CompanyRefEmbedded means the payload carried an inline company object
	CompanyRefEmbedded CompanyRefKind = "embedded"
)

// CompanyRef is a tagged union for the "company" field of ingested payloads,
// which historically arrived either as a bare id string or as a full object.
// It is resolved exactly once at the JSON boundary; downstream code switches
// on Kind and never re-inspects raw payloads.
type CompanyRef struct {
	Kind     CompanyRefKind
	ID       uuid.UUID
	Embedded EditableCompanyInfo
}

// UnmarshalJSON resolves the duck-typed company field into a tagged value.
func (r *CompanyRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("company reference is not a valid id: %w", err)
		}
		r.Kind = CompanyRefReference
		r.ID = parsed
		return nil
	}

	var embedded EditableCompanyInfo
	if err := json.Unmarshal(data, &embedded); err != nil {
		return fmt.Errorf("company field is neither an id nor an object: %w", err)
	}
	r.Kind = CompanyRefEmbedded
	r.Embedded = embedded
	return nil
}

// MarshalJSON emits the shape matching the tagged kind.
func (r CompanyRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case CompanyRefReference:
		return json.Marshal(r.ID.String())
	case CompanyRefEmbedded:
		return json.Marshal(r.Embedded)
	default:
		return []byte("null"), nil
	}
}
