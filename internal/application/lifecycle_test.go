package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/model"
)

// fakeBackend is an in-memory Backend with the same invariants as the real
// repository, plus hooks to inject latency and failures into FindForJob.
type fakeBackend struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*model.Application

	findCalls int32
	findDelay time.Duration
	findErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{apps: make(map[uuid.UUID]*model.Application)}
}

func (f *fakeBackend) FindForJob(ctx context.Context, candidateID uuid.UUID, postID uint) (*model.Application, error) {
	atomic.AddInt32(&f.findCalls, 1)
	if f.findDelay > 0 {
		select {
		case <-time.After(f.findDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.findErr != nil {
		return nil, f.findErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.Application
	for _, a := range f.apps {
		if a.CandidateID != candidateID || a.PostID != postID {
			continue
		}
		if latest == nil || a.AppliedAt.After(latest.AppliedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, apperr.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeBackend) Create(ctx context.Context, candidateID uuid.UUID, postID uint, employerID uuid.UUID) (*model.Application, error) {
	if employerID == uuid.Nil {
		return nil, apperr.ErrMissingEmployer
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.CandidateID == candidateID && a.PostID == postID && !a.Status.Terminal() {
			return nil, apperr.ErrDuplicateApplication
		}
	}
	app := &model.Application{
		ID:          uuid.New(),
		CandidateID: candidateID,
		PostID:      postID,
		EmployerID:  employerID,
		Status:      model.ApplicationStatusDraft,
		AppliedAt:   time.Now(),
	}
	f.apps[app.ID] = app
	cp := *app
	return &cp, nil
}

func (f *fakeBackend) Submit(ctx context.Context, id uuid.UUID, ref model.CVReference, coverLetter string) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	app.CVReference = ref
	app.CoverLetter = coverLetter
	app.Status = model.ApplicationStatusPending
	cp := *app
	return &cp, nil
}

func (f *fakeBackend) Withdraw(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if app.Status == model.ApplicationStatusWithdrawn {
		cp := *app
		return &cp, nil
	}
	if app.Status.Terminal() {
		return nil, apperr.ErrTerminalState
	}
	app.Status = model.ApplicationStatusWithdrawn
	cp := *app
	return &cp, nil
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.apps)
}

type fakeJobs struct {
	employers map[uint]uuid.UUID
}

func (f *fakeJobs) EmployerFor(ctx context.Context, postID uint) (uuid.UUID, error) {
	return f.employers[postID], nil
}

func newTestSession(backend Backend) *Session {
	jobs := &fakeJobs{employers: map[uint]uuid.UUID{1: uuid.New()}}
	return NewSession(backend, jobs, uuid.New(), 1)
}

func TestSessionApplyWithdrawReapply(t *testing.T) {
	backend := newFakeBackend()
	s := newTestSession(backend)
	defer s.Close()
	ctx := context.Background()

	view, err := s.RefreshStatus(ctx)
	require.NoError(t, err)
	assert.True(t, view.CanReapply)
	assert.False(t, view.IsApplied)

	libID := uuid.New()
	view, err = s.Apply(ctx, model.CVReference{CVKind: model.CVRefLibrary, CVID: &libID}, "hello")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, view.Status)
	assert.True(t, view.Submitted)
	assert.True(t, view.IsApplied)
	assert.False(t, view.CanReapply)

	// Withdraw re-enables apply without another refresh round-trip.
	view, err = s.Withdraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusWithdrawn, view.Status)
	assert.True(t, view.CanReapply)
	assert.False(t, view.IsApplied)

	view, err = s.Apply(ctx, model.CVReference{CVKind: model.CVRefNone}, "")
	require.NoError(t, err)
	assert.True(t, view.IsApplied)
	assert.Equal(t, 2, backend.count(), "reapply opens a fresh record")
}

func TestSessionApplyBlocksActiveDuplicate(t *testing.T) {
	backend := newFakeBackend()
	candidateID := uuid.New()
	jobs := &fakeJobs{employers: map[uint]uuid.UUID{1: uuid.New()}}

	s1 := NewSession(backend, jobs, candidateID, 1)
	defer s1.Close()
	_, err := s1.Apply(context.Background(), model.CVReference{CVKind: model.CVRefNone}, "")
	require.NoError(t, err)

	// A second session for the same pair sees the active application.
	s2 := NewSession(backend, jobs, candidateID, 1)
	defer s2.Close()
	_, err = s2.Apply(context.Background(), model.CVReference{CVKind: model.CVRefNone}, "")
	assert.ErrorIs(t, err, apperr.ErrDuplicateApplication)
	assert.Equal(t, 1, backend.count())
}

func TestSessionApplyMissingEmployer(t *testing.T) {
	backend := newFakeBackend()
	jobs := &fakeJobs{employers: map[uint]uuid.UUID{}}
	s := NewSession(backend, jobs, uuid.New(), 7)
	defer s.Close()

	_, err := s.Apply(context.Background(), model.CVReference{CVKind: model.CVRefNone}, "")
	assert.ErrorIs(t, err, apperr.ErrMissingEmployer)
	assert.Equal(t, 0, backend.count(), "nothing is written for an ownerless post")
}

func TestSessionApplyResumesDraft(t *testing.T) {
	backend := newFakeBackend()
	candidateID := uuid.New()
	employerID := uuid.New()
	jobs := &fakeJobs{employers: map[uint]uuid.UUID{1: employerID}}

	draft, err := backend.Create(context.Background(), candidateID, 1, employerID)
	require.NoError(t, err)

	s := NewSession(backend, jobs, candidateID, 1)
	defer s.Close()
	view, err := s.Apply(context.Background(), model.CVReference{CVKind: model.CVRefNone}, "")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, view.ApplicationID, "leftover draft is submitted, not duplicated")
	assert.Equal(t, 1, backend.count())
}

func TestRefreshStatusCoalesces(t *testing.T) {
	backend := newFakeBackend()
	backend.findDelay = 50 * time.Millisecond
	s := newTestSession(backend)
	defer s.Close()

	const callers = 10
	views := make([]StatusView, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			views[i], errs[i] = s.RefreshStatus(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.findCalls), "overlapping refreshes share one fetch")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, views[0], views[i])
	}
}

func TestRefreshStatusAfterClose(t *testing.T) {
	s := newTestSession(newFakeBackend())
	s.Close()

	_, err := s.RefreshStatus(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseDuringRefreshDiscardsResult(t *testing.T) {
	backend := newFakeBackend()
	backend.findDelay = 50 * time.Millisecond
	s := newTestSession(backend)

	done := make(chan error, 1)
	go func() {
		_, err := s.RefreshStatus(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	s.Close()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusView{CanReapply: true}, s.View(), "closed session keeps its last view")
}

func TestRefreshStatusContainsAccessErrors(t *testing.T) {
	for _, sentinel := range []error{apperr.ErrPermissionDenied, apperr.ErrAuthExpired} {
		backend := newFakeBackend()
		backend.findErr = sentinel
		s := newTestSession(backend)

		view, err := s.RefreshStatus(context.Background())
		require.NoError(t, err, "access errors resolve to the no-relationship view")
		assert.True(t, view.CanReapply)
		assert.False(t, view.IsApplied)
		s.Close()
	}
}

func TestRefreshStatusSurfacesOffline(t *testing.T) {
	backend := newFakeBackend()
	backend.findErr = apperr.ErrOffline
	s := newTestSession(backend)
	defer s.Close()

	_, err := s.RefreshStatus(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Classify(err).Retryable())
}
