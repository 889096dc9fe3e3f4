package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CVType discriminates template-built CVs from uploaded files.
type CVType string

const (
	// CVTypeTemplate is a CV built section-by-section in the app
	CVTypeTemplate CVType = "template"
	// CVTypeUploaded is a CV uploaded as an external file
	CVTypeUploaded CVType = "uploaded"
)

// CVPersonalInfo is the header block of a template CV.
type CVPersonalInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Tel      string `json:"tel"`
	Address  string `json:"address"`
	Summary  string `json:"summary"`
}

// CVEducation is one education entry of a template CV.
type CVEducation struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	StartYear string `json:"start_year"`
	EndYear   string `json:"end_year"`
}

// CVExperience is one work-experience entry of a template CV.
type CVExperience struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

// CVSections holds the structured body of a template CV, stored as a single
// jsonb column. Empty and unused for uploaded CVs.
type CVSections struct {
	Education  []CVEducation  `json:"education,omitempty"`
	Experience []CVExperience `json:"experience,omitempty"`
	Languages  []string       `json:"languages,omitempty"`
	Interests  []string       `json:"interests,omitempty"`
}

// Value implements driver.Valuer, serializing sections to jsonb.
func (s CVSections) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner, deserializing sections from jsonb.
func (s *CVSections) Scan(value interface{}) error {
	if value == nil {
		*s = CVSections{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		str, okStr := value.(string)
		if !okStr {
			return fmt.Errorf("unsupported type %T for CVSections", value)
		}
		b = []byte(str)
	}
	return json.Unmarshal(b, s)
}

// CVRecord is a stored CV owned by a candidate, either template-built or
// uploaded. At most one record per user is marked default; the store keeps
// that invariant best-effort, not the database.
type CVRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   CVType    `gorm:"type:text;not null" json:"type"`

	Title        string         `gorm:"type:text" json:"title"`
	PersonalInfo CVPersonalInfo `gorm:"embedded;embeddedPrefix:personal_" json:"personal_info"`
	Sections     CVSections     `gorm:"type:jsonb" json:"sections"`
	Skills       pq.StringArray `gorm:"type:text[]" json:"skills"`

	// FileURL is set for uploaded CVs, or for template CVs once exported.
	FileURL  string `gorm:"type:text" json:"file_url,omitempty"`
	PDFURL   string `gorm:"type:text" json:"pdf_url,omitempty"`
	FileName string `gorm:"type:text" json:"file_name,omitempty"`

	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}
