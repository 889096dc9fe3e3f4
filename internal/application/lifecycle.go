package application

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/model"
)

// Backend is the slice of Repository the lifecycle session drives. Kept as
// an interface so session behavior is testable without a database.
type Backend interface {
	FindForJob(ctx context.Context, candidateID uuid.UUID, postID uint) (*model.Application, error)
	Create(ctx context.Context, candidateID uuid.UUID, postID uint, employerID uuid.UUID) (*model.Application, error)
	Submit(ctx context.Context, id uuid.UUID, ref model.CVReference, coverLetter string) (*model.Application, error)
	Withdraw(ctx context.Context, id uuid.UUID) (*model.Application, error)
}

// JobSource resolves the owning employer of a job post.
type JobSource interface {
	EmployerFor(ctx context.Context, postID uint) (uuid.UUID, error)
}

// StatusView is the flattened relationship between one candidate and one
// job, derived entirely from the latest application record. IsApplied and
// CanReapply are mutually exclusive by construction.
type StatusView struct {
	ApplicationID uuid.UUID               `json:"application_id,omitempty"`
	Status        model.ApplicationStatus `json:"status,omitempty"`
	Submitted     bool                    `json:"submitted"`
	HasDraft      bool                    `json:"has_draft"`
	IsApplied     bool                    `json:"is_applied"`
	CanReapply    bool                    `json:"can_reapply"`
}

func viewOf(app *model.Application) StatusView {
	if app == nil {
		return StatusView{CanReapply: true}
	}
	v := StatusView{
		ApplicationID: app.ID,
		Status:        app.Status,
		Submitted:     app.Status != model.ApplicationStatusDraft,
		HasDraft:      app.Status == model.ApplicationStatusDraft,
		CanReapply:    app.Status.ReapplyEligible(),
	}
	v.IsApplied = v.Submitted && !v.CanReapply
	return v
}

// Session tracks one (candidate, job) pair. Concurrent RefreshStatus calls
// coalesce onto a single backend fetch, and Close stops any in-flight
// refresh from mutating the cached view afterwards.
type Session struct {
	backend Backend
	jobs    JobSource

	candidateID uuid.UUID
	postID      uint

	ctx    context.Context
	cancel context.CancelFunc

	group singleflight.Group

	mu   sync.Mutex
	view StatusView
	app  *model.Application
}

// NewSession opens a lifecycle session for one candidate and one job post.
// The session starts with no cached state; call RefreshStatus to populate it.
func NewSession(backend Backend, jobs JobSource, candidateID uuid.UUID, postID uint) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		backend:     backend,
		jobs:        jobs,
		candidateID: candidateID,
		postID:      postID,
		ctx:         ctx,
		cancel:      cancel,
		view:        StatusView{CanReapply: true},
	}
}

// Close cancels any in-flight refresh. A refresh that completes after Close
// discards its result instead of updating the cached view.
func (s *Session) Close() {
	s.cancel()
}

// View returns the last cached relationship view without touching the
// backend.
func (s *Session) View() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// RefreshStatus re-reads the candidate's application for this job and
// updates the cached view. Overlapping calls share one backend fetch; every
// waiter receives the same result. Permission and auth failures resolve to
// the no-relationship view rather than an error: the caller cannot act on
// either, and a stale "applied" badge is worse than a missing one.
func (s *Session) RefreshStatus(ctx context.Context) (StatusView, error) {
	if err := s.ctx.Err(); err != nil {
		return StatusView{}, err
	}

	res, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		app, err := s.backend.FindForJob(ctx, s.candidateID, s.postID)
		if err != nil {
			switch apperr.Classify(err) {
			case apperr.KindNotFound, apperr.KindPermission, apperr.KindAuth:
				return (*model.Application)(nil), nil
			}
			return nil, err
		}
		return app, nil
	})
	if err != nil {
		return StatusView{}, err
	}

	// The session was closed while the fetch was in flight; the result no
	// longer has an owner.
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return StatusView{}, ctxErr
	}

	app, _ := res.(*model.Application)
	return s.store(app), nil
}

func (s *Session) store(app *model.Application) StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app = app
	s.view = viewOf(app)
	return s.view
}

// Apply submits an application for this job with the given CV reference.
// A leftover draft is resumed rather than duplicated, and a still-active
// application fails fast with apperr.ErrDuplicateApplication before any
// write. The employer must be resolvable first; applying to an ownerless
// post is rejected with apperr.ErrMissingEmployer.
func (s *Session) Apply(ctx context.Context, ref model.CVReference, coverLetter string) (StatusView, error) {
	existing, err := s.backend.FindForJob(ctx, s.candidateID, s.postID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return StatusView{}, err
	}

	var draftID uuid.UUID
	if existing != nil {
		switch {
		case existing.Status == model.ApplicationStatusDraft:
			draftID = existing.ID
		case !existing.Status.ReapplyEligible():
			return StatusView{}, apperr.ErrDuplicateApplication
		}
	}

	if draftID == uuid.Nil {
		employerID, err := s.jobs.EmployerFor(ctx, s.postID)
		if err != nil {
			return StatusView{}, err
		}
		if employerID == uuid.Nil {
			return StatusView{}, apperr.ErrMissingEmployer
		}
		draft, err := s.backend.Create(ctx, s.candidateID, s.postID, employerID)
		if err != nil {
			return StatusView{}, err
		}
		draftID = draft.ID
	}

	app, err := s.backend.Submit(ctx, draftID, ref, coverLetter)
	if err != nil {
		return StatusView{}, err
	}
	return s.store(app), nil
}

// Withdraw withdraws the candidate's current application for this job. The
// returned view already reports CanReapply so the caller can re-enable the
// apply action without waiting for another refresh.
func (s *Session) Withdraw(ctx context.Context) (StatusView, error) {
	s.mu.Lock()
	cached := s.app
	s.mu.Unlock()

	app := cached
	if app == nil {
		var err error
		app, err = s.backend.FindForJob(ctx, s.candidateID, s.postID)
		if err != nil {
			return StatusView{}, err
		}
	}

	withdrawn, err := s.backend.Withdraw(ctx, app.ID)
	if err != nil {
		return StatusView{}, err
	}
	return s.store(withdrawn), nil
}
