package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttachmentType discriminates the CV source of a quick-post submission.
type AttachmentType string

const (
	// AttachmentTemplate means a library CV was attached as a snapshot
	AttachmentTemplate AttachmentType = "template"
	// AttachmentExternal means an external URL was provided instead
	AttachmentExternal AttachmentType = "external"
	// AttachmentNone means the submission carries no CV
	AttachmentNone AttachmentType = "none"
)

// CVSnapshot is an immutable point-in-time copy of a CVRecord, captured when
// a library CV is attached to a quick-post submission. Once taken it is
// independent of the source record: later edits or deletion of the original
// never change what a viewer sees.
type CVSnapshot struct {
	SourceID     uuid.UUID      `json:"source_id"`
	Title        string         `json:"title"`
	PersonalInfo CVPersonalInfo `json:"personal_info"`
	Sections     CVSections     `json:"sections"`
	Skills       []string       `json:"skills,omitempty"`
	FileURL      string         `json:"file_url,omitempty"`
	TakenAt      time.Time      `json:"taken_at"`
}

// Value implements driver.Valuer, serializing the snapshot to jsonb.
func (s CVSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner, deserializing the snapshot from jsonb.
func (s *CVSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = CVSnapshot{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		str, okStr := value.(string)
		if !okStr {
			return fmt.Errorf("unsupported type %T for CVSnapshot", value)
		}
		b = []byte(str)
	}
	return json.Unmarshal(b, s)
}

// QuickPostAttachment is the lighter-weight CV attachment used by quick-post
// submissions. CVID is a back-reference for "view original" convenience only;
// rendering is always driven by the snapshot.
type QuickPostAttachment struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ApplicationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"application_id"`
	Type          AttachmentType `gorm:"type:text;not null;default:'none'" json:"type"`
	CVID          *uuid.UUID     `gorm:"type:uuid" json:"cv_id,omitempty"`
	CVSnapshot    *CVSnapshot    `gorm:"type:jsonb" json:"cv_snapshot,omitempty"`
	ExternalURL   string         `gorm:"type:text" json:"external_url,omitempty"`
	CreatedAt     time.Time      `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}

// LegacyCVLink is the oldest CV linking record still present in production
// data: a bare (candidate, post) row pointing at a CV id or source string.
// Reads of this table are strictly best-effort.
type LegacyCVLink struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CandidateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"candidate_id"`
	PostID      uint       `gorm:"not null;index" json:"post_id"`
	CVID        *uuid.UUID `gorm:"type:uuid" json:"cv_id,omitempty"`
	CVSource    string     `gorm:"type:text" json:"cv_source,omitempty"`
}
