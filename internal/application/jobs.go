package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
)

// DBJobSource resolves job post ownership from the database.
type DBJobSource struct {
	DB *database.DBinstanceStruct
}

// NewDBJobSource creates a DBJobSource with the provided database connection.
func NewDBJobSource(db *database.DBinstanceStruct) *DBJobSource {
	return &DBJobSource{DB: db}
}

// EmployerFor returns the owning employer of a job post. A missing post maps
// to apperr.ErrNotFound; a post somehow stored without an owner returns
// uuid.Nil, which Apply rejects as apperr.ErrMissingEmployer.
func (s *DBJobSource) EmployerFor(ctx context.Context, postID uint) (uuid.UUID, error) {
	var post model.JobPost
	err := s.DB.WithContext(ctx).Select("company_user_id").First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("job post %d: %w", postID, apperr.ErrNotFound)
		}
		return uuid.Nil, err
	}
	return post.CompanyUserID, nil
}
