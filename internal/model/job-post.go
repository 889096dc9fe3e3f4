package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditableJobPostInfo is part of job post that can be edited
type EditableJobPostInfo struct {
	Title    string         `gorm:"type:text" json:"title"`
	Desc     string         `gorm:"type:text" json:"desc"`
	Req      string         `gorm:"type:text" json:"req"`
	ExpLvl   string         `gorm:"type:text" json:"exp_lvl"`
	Location string         `gorm:"type:text" json:"location"`
	Type     string         `gorm:"type:text" json:"type"`
	Salary   string         `gorm:"type:text" json:"salary"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags"`
	Expiring *time.Time     `gorm:"type:timestamp" json:"expiring,omitempty"`
}

// JobPost is gorm model for store job post data in DB
type JobPost struct {
	ID            uint        `gorm:"primaryKey;autoIncrement;->" json:"id"`
	CompanyUserID uuid.UUID   `gorm:"type:uuid;not null;index;<-:create" json:"company_id"`
	CompanyUser   CompanyUser `gorm:"foreignKey:CompanyUserID;references:UserID" json:"company_user"`
	EditableJobPostInfo
	PostTime     time.Time     `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"post_time"`
	Applications []Application `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"applications"`
}

// Expired reports whether the post has passed its expiry time, if any.
func (j *JobPost) Expired(now time.Time) bool {
	return j.Expiring != nil && j.Expiring.Before(now)
}

// JobPostResponse is the response struct for job post with user application status
type JobPostResponse struct {
	ID            uint        `json:"id"`
	CompanyUserID uuid.UUID   `json:"company_id"`
	CompanyUser   CompanyUser `json:"company_user"`
	PostTime      time.Time   `json:"post_time"`
	UserApplied   bool        `json:"user_applied"`
	EditableJobPostInfo
}

// ToJobPostResponse converts JobPost to JobPostResponse, deriving UserApplied
// for the signed-in candidate. Terminal applications do not count: a candidate
// who withdrew or was rejected sees the post as open again.
func (j *JobPost) ToJobPostResponse(user User) (JobPostResponse, error) {

	var resp JobPostResponse

	b, err := json.Marshal(j)
	if err != nil {
		return resp, err
	}

	err = json.Unmarshal(b, &resp)
	if err != nil {
		return resp, err
	}

	userApplied := false

	if user.Role == RoleCandidate {
		for _, application := range j.Applications {
			if application.CandidateID == user.ID && !application.Status.ReapplyEligible() {
				userApplied = true
				break
			}
		}
	}
	resp.UserApplied = userApplied

	return resp, nil
}
