// Package application implements job application persistence and the
// candidate-facing lifecycle: apply, submit, withdraw, reapply, and the
// status derivations the UI renders from.
package application

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

// nonTerminalStatuses are the states that block a fresh application for the
// same (candidate, post) pair.
var nonTerminalStatuses = []model.ApplicationStatus{
	model.ApplicationStatusDraft,
	model.ApplicationStatusPending,
	model.ApplicationStatusReviewing,
}

// Repository persists application records and enforces the one-active-
// application-per-job invariant on every write path.
type Repository struct {
	DB *database.DBinstanceStruct
}

// NewRepository creates a new Repository with the provided database connection.
func NewRepository(db *database.DBinstanceStruct) *Repository {
	return &Repository{DB: db}
}

// Create opens a new draft application. The employer id must be resolvable
// before anything is written: an application cannot exist for an ownerless
// job. At most one non-terminal application may exist per (candidate, post);
// rejected and withdrawn records stay on file but do not block.
func (r *Repository) Create(ctx context.Context, candidateID uuid.UUID, postID uint, employerID uuid.UUID) (*model.Application, error) {
	if employerID == uuid.Nil {
		return nil, apperr.ErrMissingEmployer
	}

	var existing model.Application
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ? AND post_id = ? AND status IN ?", candidateID, postID, nonTerminalStatuses).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("application %s: %w", existing.ID, apperr.ErrDuplicateApplication)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	app := &model.Application{
		CandidateID: candidateID,
		PostID:      postID,
		EmployerID:  employerID,
		Status:      model.ApplicationStatusDraft,
		CVReference: model.CVReference{CVKind: model.CVRefNone},
		UpdatedAt:   time.Now(),
	}
	if err := r.DB.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// FindForJob returns the candidate's most recent application for a job, or
// apperr.ErrNotFound when none exists.
func (r *Repository) FindForJob(ctx context.Context, candidateID uuid.UUID, postID uint) (*model.Application, error) {
	var app model.Application
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ? AND post_id = ?", candidateID, postID).
		Order("applied_at DESC").
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// Get fetches one application by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.DB.WithContext(ctx).First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &app, nil
}

// ListMine returns every application a candidate ever made, newest first.
func (r *Repository) ListMine(ctx context.Context, candidateID uuid.UUID) ([]model.Application, error) {
	var apps []model.Application
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ListByEmployer returns every submitted application across the employer's
// job posts. Drafts are private to the candidate and excluded.
func (r *Repository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]model.Application, error) {
	var apps []model.Application
	err := r.DB.WithContext(ctx).
		Where("employer_id = ? AND status <> ?", employerID, model.ApplicationStatusDraft).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ListByPost returns submitted applications for one job post.
func (r *Repository) ListByPost(ctx context.Context, postID uint) ([]model.Application, error) {
	var apps []model.Application
	err := r.DB.WithContext(ctx).
		Where("post_id = ? AND status <> ?", postID, model.ApplicationStatusDraft).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// Submit attaches a CV reference to a draft and moves it to pending.
func (r *Repository) Submit(ctx context.Context, id uuid.UUID, ref model.CVReference, coverLetter string) (*model.Application, error) {
	app, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationStatusDraft {
		return nil, fmt.Errorf("application %s is %s, not draft: %w", id, app.Status, apperr.ErrTerminalState)
	}

	app.CVReference = ref
	app.CoverLetter = coverLetter
	app.Status = model.ApplicationStatusPending
	app.UpdatedAt = time.Now()
	if err := r.DB.WithContext(ctx).Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateStatus applies an employer-side transition. The only client-enforced
// rule is that terminal states are final; the server stays the authority for
// everything else.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus) (*model.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	app, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status.Terminal() {
		return nil, fmt.Errorf("application %s is already %s: %w", id, app.Status, apperr.ErrTerminalState)
	}

	app.Status = status
	app.UpdatedAt = time.Now()
	if err := r.DB.WithContext(ctx).Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// Withdraw moves any non-terminal application to withdrawn. Withdrawing an
// already-withdrawn application is a no-op success, so retries and double
// taps are harmless. Accepted and rejected applications cannot be withdrawn.
func (r *Repository) Withdraw(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	app, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.Status == model.ApplicationStatusWithdrawn {
		return app, nil
	}
	if app.Status.Terminal() {
		return nil, fmt.Errorf("application %s is %s: %w", id, app.Status, apperr.ErrTerminalState)
	}

	app.Status = model.ApplicationStatusWithdrawn
	app.UpdatedAt = time.Now()
	if err := r.DB.WithContext(ctx).Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}
