// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// RoleCandidate is the role string for job-seeking users
	RoleCandidate = "candidate"
	// RoleEmployer is the role string for company-side users
	RoleEmployer = "employer"
	// RoleAdmin is the role string for platform administrators
	RoleAdmin = "admin"
)

// ContactInfo holds optional contact channels shared by every profile kind
type ContactInfo struct {
	Tel   *string `json:"tel"`
	Email *string `json:"email"`
}

// User is the base account record every role-specific profile hangs off of
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	ContactInfo
	GoogleID       string    `gorm:"index" json:"-"`
	Password       string    `json:"-"`
	Role           string    `gorm:"type:text;not null" json:"role"`
	ProfilePicture string    `gorm:"type:text" json:"profile_picture"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}
