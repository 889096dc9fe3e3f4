package cv

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/model"
)

type fakeRecords struct {
	recs     map[uuid.UUID]*model.CVRecord
	defaults map[uuid.UUID]*model.CVRecord
	loadErr  error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		recs:     make(map[uuid.UUID]*model.CVRecord),
		defaults: make(map[uuid.UUID]*model.CVRecord),
	}
}

func (f *fakeRecords) add(rec *model.CVRecord) *model.CVRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.recs[rec.ID] = rec
	if rec.IsDefault {
		f.defaults[rec.UserID] = rec
	}
	return rec
}

func (f *fakeRecords) Load(ctx context.Context, id uuid.UUID) (*model.CVRecord, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	rec, ok := f.recs[id]
	if !ok {
		return nil, fmt.Errorf("cv %s: %w", id, apperr.ErrNotFound)
	}
	return rec, nil
}

func (f *fakeRecords) DefaultForUser(ctx context.Context, userID uuid.UUID) (*model.CVRecord, error) {
	rec, ok := f.defaults[userID]
	if !ok {
		return nil, apperr.ErrNoDefaultCV
	}
	return rec, nil
}

type fakeLegacy struct {
	link *model.LegacyCVLink
	err  error
}

func (f *fakeLegacy) LinkFor(ctx context.Context, candidateID uuid.UUID, postID uint) (*model.LegacyCVLink, error) {
	return f.link, f.err
}

type fakeURLs struct {
	prefix string
	err    error
}

func (f *fakeURLs) ResolveURL(ctx context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.prefix + path, nil
}

func libraryApp(cvID uuid.UUID) *model.Application {
	return &model.Application{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		PostID:      1,
		CVReference: model.CVReference{CVKind: model.CVRefLibrary, CVID: &cvID},
	}
}

func TestResolveLibraryReference(t *testing.T) {
	records := newFakeRecords()
	rec := records.add(&model.CVRecord{UserID: uuid.New(), Type: model.CVTypeTemplate, Title: "Main CV"})
	r := NewResolver(records, nil, nil)

	art, err := r.Resolve(context.Background(), libraryApp(rec.ID))
	require.NoError(t, err)
	assert.Equal(t, ArtifactTemplate, art.Kind)
	assert.Equal(t, rec.ID, art.Record.ID)
}

func TestResolveLibraryUploadedRecord(t *testing.T) {
	records := newFakeRecords()
	rec := records.add(&model.CVRecord{
		UserID:   uuid.New(),
		Type:     model.CVTypeUploaded,
		FileURL:  "https://storage.example.com/cv.pdf",
		FileName: "cv.pdf",
	})
	r := NewResolver(records, nil, nil)

	art, err := r.Resolve(context.Background(), libraryApp(rec.ID))
	require.NoError(t, err)
	assert.Equal(t, ArtifactFile, art.Kind)
	assert.Equal(t, "https://storage.example.com/cv.pdf", art.URL)
	assert.Equal(t, "cv.pdf", art.FileName)
}

func TestResolveMissingLibraryCVNeverFallsBack(t *testing.T) {
	records := newFakeRecords()
	app := libraryApp(uuid.New())
	// A perfectly good default exists; an explicit dead reference must still
	// fail rather than silently rendering the wrong CV.
	records.defaults[app.CandidateID] = &model.CVRecord{ID: uuid.New(), Type: model.CVTypeTemplate}
	r := NewResolver(records, nil, nil)

	_, err := r.Resolve(context.Background(), app)
	assert.ErrorIs(t, err, apperr.ErrCVGone)
}

func TestResolveLegacyLink(t *testing.T) {
	records := newFakeRecords()
	rec := records.add(&model.CVRecord{UserID: uuid.New(), Type: model.CVTypeTemplate})
	app := &model.Application{ID: uuid.New(), CandidateID: uuid.New(), PostID: 3}

	r := NewResolver(records, &fakeLegacy{link: &model.LegacyCVLink{CVID: &rec.ID}}, nil)
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactTemplate, art.Kind)
	assert.Equal(t, rec.ID, art.Record.ID)
}

func TestResolveLegacyFailureFallsThrough(t *testing.T) {
	records := newFakeRecords()
	app := &model.Application{ID: uuid.New(), CandidateID: uuid.New(), PostID: 3}
	def := records.add(&model.CVRecord{UserID: app.CandidateID, Type: model.CVTypeTemplate, IsDefault: true})

	r := NewResolver(records, &fakeLegacy{err: errors.New("permission denied on legacy table")}, nil)
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactTemplate, art.Kind)
	assert.Equal(t, def.ID, art.Record.ID)
}

func TestResolveLegacyRemoteSource(t *testing.T) {
	app := &model.Application{ID: uuid.New(), CandidateID: uuid.New(), PostID: 3}
	legacy := &fakeLegacy{link: &model.LegacyCVLink{CVSource: "https://old.example.com/cv.doc"}}

	r := NewResolver(newFakeRecords(), legacy, nil)
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactFile, art.Kind)
	assert.Equal(t, "https://old.example.com/cv.doc", art.URL)
}

func TestResolveDefaultCV(t *testing.T) {
	records := newFakeRecords()
	app := &model.Application{ID: uuid.New(), CandidateID: uuid.New()}
	def := records.add(&model.CVRecord{UserID: app.CandidateID, Type: model.CVTypeTemplate, IsDefault: true})

	r := NewResolver(records, nil, nil)
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, def.ID, art.Record.ID)
}

func TestResolveDirectURL(t *testing.T) {
	app := &model.Application{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		CVReference: model.CVReference{CVKind: model.CVRefUpload, CVURL: "https://cdn.example.com/cv.pdf", CVFileName: "cv.pdf"},
	}

	r := NewResolver(newFakeRecords(), nil, nil)
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactFile, art.Kind)
	assert.Equal(t, "https://cdn.example.com/cv.pdf", art.URL)
	assert.Equal(t, "cv.pdf", art.FileName)
}

func TestResolveStoragePath(t *testing.T) {
	app := &model.Application{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		CVReference: model.CVReference{CVKind: model.CVRefUpload, CVURL: "uploads/cv/abc.pdf"},
	}

	r := NewResolver(newFakeRecords(), nil, &fakeURLs{prefix: "https://storage.example.com/"})
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactFile, art.Kind)
	assert.Equal(t, "https://storage.example.com/uploads/cv/abc.pdf", art.URL)
}

func TestResolveStoragePathFailureIsNone(t *testing.T) {
	app := &model.Application{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		CVReference: model.CVReference{CVKind: model.CVRefUpload, CVURL: "uploads/cv/abc.pdf"},
	}

	r := NewResolver(newFakeRecords(), nil, &fakeURLs{err: errors.New("bucket unavailable")})
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactNone, art.Kind)
}

func TestResolveBlocksLocalReferences(t *testing.T) {
	for _, url := range []string{
		"file:///sdcard/cv.pdf",
		"content://downloads/123",
		"/data/user/0/app/cache/cv.pdf",
		"/var/mobile/Containers/cv.pdf",
	} {
		app := &model.Application{
			ID:          uuid.New(),
			CandidateID: uuid.New(),
			CVReference: model.CVReference{CVKind: model.CVRefUpload, CVURL: url},
		}
		r := NewResolver(newFakeRecords(), nil, nil)
		_, err := r.Resolve(context.Background(), app)
		assert.ErrorIs(t, err, apperr.ErrLocalCVReference, url)
	}
}

func TestResolveNothingIsNotAnError(t *testing.T) {
	app := &model.Application{ID: uuid.New(), CandidateID: uuid.New()}

	r := NewResolver(newFakeRecords(), &fakeLegacy{}, nil)
	art, err := r.Resolve(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, ArtifactNone, art.Kind)
}

func TestResolveAttachmentSnapshotIsAuthoritative(t *testing.T) {
	// The source record is gone; the snapshot must still render.
	snap := &model.CVSnapshot{SourceID: uuid.New(), Title: "Snapshotted CV"}
	att := &model.QuickPostAttachment{
		ID:         uuid.New(),
		Type:       model.AttachmentTemplate,
		CVID:       &snap.SourceID,
		CVSnapshot: snap,
	}

	r := NewResolver(newFakeRecords(), nil, nil)
	art, err := r.ResolveAttachment(context.Background(), att)
	require.NoError(t, err)
	assert.Equal(t, ArtifactTemplate, art.Kind)
	assert.Equal(t, "Snapshotted CV", art.Snapshot.Title)
}

func TestResolveAttachmentWithoutSnapshot(t *testing.T) {
	records := newFakeRecords()
	rec := records.add(&model.CVRecord{UserID: uuid.New(), Type: model.CVTypeTemplate})
	att := &model.QuickPostAttachment{ID: uuid.New(), Type: model.AttachmentTemplate, CVID: &rec.ID}

	r := NewResolver(records, nil, nil)
	art, err := r.ResolveAttachment(context.Background(), att)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, art.Record.ID)

	missing := uuid.New()
	att.CVID = &missing
	_, err = r.ResolveAttachment(context.Background(), att)
	assert.ErrorIs(t, err, apperr.ErrCVGone)
}

func TestResolveAttachmentExternal(t *testing.T) {
	r := NewResolver(newFakeRecords(), nil, nil)

	art, err := r.ResolveAttachment(context.Background(), &model.QuickPostAttachment{
		Type: model.AttachmentExternal, ExternalURL: "https://drive.example.com/cv",
	})
	require.NoError(t, err)
	assert.Equal(t, ArtifactFile, art.Kind)

	_, err = r.ResolveAttachment(context.Background(), &model.QuickPostAttachment{
		Type: model.AttachmentExternal, ExternalURL: "file:///sdcard/cv.pdf",
	})
	assert.ErrorIs(t, err, apperr.ErrLocalCVReference)

	art, err = r.ResolveAttachment(context.Background(), &model.QuickPostAttachment{Type: model.AttachmentExternal})
	require.NoError(t, err)
	assert.Equal(t, ArtifactNone, art.Kind)
}

func TestSnapshotIsImmutable(t *testing.T) {
	rec := &model.CVRecord{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   model.CVTypeTemplate,
		Title:  "Original title",
		Skills: pq.StringArray{"Go", "SQL"},
	}

	snap := Snapshot(rec)

	rec.Title = "Edited after submission"
	rec.Skills[0] = "Rust"

	assert.Equal(t, "Original title", snap.Title)
	assert.Equal(t, []string{"Go", "SQL"}, snap.Skills)
	assert.Equal(t, rec.ID, snap.SourceID)
	assert.False(t, snap.TakenAt.IsZero())
}

func TestAttachLibraryCV(t *testing.T) {
	records := newFakeRecords()
	rec := records.add(&model.CVRecord{UserID: uuid.New(), Type: model.CVTypeTemplate, Title: "Main CV"})
	appID := uuid.New()

	att, err := AttachLibraryCV(context.Background(), records, appID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, appID, att.ApplicationID)
	assert.Equal(t, model.AttachmentTemplate, att.Type)
	require.NotNil(t, att.CVSnapshot)
	assert.Equal(t, "Main CV", att.CVSnapshot.Title)
	require.NotNil(t, att.CVID)
	assert.Equal(t, rec.ID, *att.CVID)

	_, err = AttachLibraryCV(context.Background(), records, appID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrCVGone)
}
