package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditableCandidateInfo is the part of a candidate profile the owner may edit
type EditableCandidateInfo struct {
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Headline  string         `gorm:"type:text" json:"headline"`
	About     string         `gorm:"type:text" json:"about"`
	Skills    pq.StringArray `gorm:"type:text[]" json:"skills"`
	SoftSkill pq.StringArray `gorm:"type:text[]" json:"soft_skill"`
}

// CandidateUser is the profile record for a job-seeking user
type CandidateUser struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"user"`
	EditableCandidateInfo
}
