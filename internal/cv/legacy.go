package cv

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
)

// DBLegacySource reads legacy CV link rows straight from the database.
type DBLegacySource struct {
	DB *database.DBinstanceStruct
}

// NewDBLegacySource creates a DBLegacySource with the provided database connection.
func NewDBLegacySource(db *database.DBinstanceStruct) *DBLegacySource {
	return &DBLegacySource{DB: db}
}

// LinkFor returns the legacy link for a (candidate, post) pair, or nil when
// none exists. Other errors propagate; the resolver swallows them anyway.
func (s *DBLegacySource) LinkFor(ctx context.Context, candidateID uuid.UUID, postID uint) (*model.LegacyCVLink, error) {
	var link model.LegacyCVLink
	err := s.DB.WithContext(ctx).
		First(&link, "candidate_id = ? AND post_id = ?", candidateID, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}
