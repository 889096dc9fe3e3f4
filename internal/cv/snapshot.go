package cv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/model"
)

// Snapshot captures an immutable copy of a CV record for a quick-post
// submission. Viewers render the copy, so later edits or deletion of the
// source record never change what they see. The cv_id back-reference on the
// attachment is kept for "view original" only and is never authoritative.
func Snapshot(rec *model.CVRecord) *model.CVSnapshot {
	snap := &model.CVSnapshot{
		SourceID:     rec.ID,
		Title:        rec.Title,
		PersonalInfo: rec.PersonalInfo,
		Sections:     rec.Sections,
		FileURL:      rec.FileURL,
		TakenAt:      time.Now(),
	}
	// Copy the slice: the snapshot must not alias the record's backing array.
	if len(rec.Skills) > 0 {
		snap.Skills = make([]string, len(rec.Skills))
		copy(snap.Skills, rec.Skills)
	}
	return snap
}

// AttachLibraryCV reads the current CV record in full and builds a quick-post
// attachment carrying its snapshot. A missing CV id is a hard error: the
// caller explicitly chose a library CV.
func AttachLibraryCV(ctx context.Context, records RecordSource, applicationID, cvID uuid.UUID) (*model.QuickPostAttachment, error) {
	rec, err := records.Load(ctx, cvID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("cv %s: %w", cvID, apperr.ErrCVGone)
		}
		return nil, err
	}

	id := cvID
	return &model.QuickPostAttachment{
		ApplicationID: applicationID,
		Type:          model.AttachmentTemplate,
		CVID:          &id,
		CVSnapshot:    Snapshot(rec),
	}, nil
}
