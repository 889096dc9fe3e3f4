// Package cv implements CV persistence, the snapshot contract for quick-post
// submissions, and the multi-source resolution deciding which artifact
// represents "the CV" of an application at view time.
package cv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
)

// Store persists CV records per user.
type Store struct {
	DB *database.DBinstanceStruct
}

// NewStore creates a new Store with the provided database connection.
func NewStore(db *database.DBinstanceStruct) *Store {
	return &Store{DB: db}
}

// Save inserts or updates a CV record. The first CV a user ever creates is
// auto-marked default.
func (s *Store) Save(ctx context.Context, rec *model.CVRecord) (uuid.UUID, error) {
	if rec.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("cv record has no owner")
	}
	if rec.Type != model.CVTypeTemplate && rec.Type != model.CVTypeUploaded {
		return uuid.Nil, fmt.Errorf("unknown cv type %q", rec.Type)
	}

	if rec.ID == uuid.Nil {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&model.CVRecord{}).
			Where("user_id = ?", rec.UserID).Count(&count).Error; err != nil {
			return uuid.Nil, err
		}
		if count == 0 {
			rec.IsDefault = true
		}
	}

	rec.UpdatedAt = time.Now()
	if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

// Load fetches a CV record by id. A missing id maps to apperr.ErrNotFound.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*model.CVRecord, error) {
	var rec model.CVRecord
	err := s.DB.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cv %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// ListMine returns every CV owned by the user, default first.
func (s *Store) ListMine(ctx context.Context, userID uuid.UUID) ([]model.CVRecord, error) {
	var recs []model.CVRecord
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, updated_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// DefaultForUser returns the user's default CV, or apperr.ErrNoDefaultCV when
// none is marked.
func (s *Store) DefaultForUser(ctx context.Context, userID uuid.UUID) (*model.CVRecord, error) {
	var rec model.CVRecord
	err := s.DB.WithContext(ctx).
		First(&rec, "user_id = ? AND is_default = true", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNoDefaultCV
		}
		return nil, err
	}
	return &rec, nil
}

// SetDefault marks one CV as the user's default. The invariant (exactly one
// default per user) is kept by unsetting all flags and then setting one, two
// separate statements with no transaction: a crash between them leaves the
// user with zero defaults, which callers must tolerate.
func (s *Store) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	var rec model.CVRecord
	err := s.DB.WithContext(ctx).First(&rec, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cv %s: %w", id, apperr.ErrNotFound)
		}
		return err
	}

	if err := s.DB.WithContext(ctx).Model(&model.CVRecord{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error; err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&model.CVRecord{}).
		Where("id = ?", id).
		Update("is_default", true).Error
}

// Delete removes a CV owned by the user. Deleting the default leaves the user
// without one; submissions holding snapshots are unaffected.
func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.CVRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cv %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
