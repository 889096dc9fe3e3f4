package cv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobpath-backend/internal/apperr"
	"jobpath-backend/internal/model"
)

// ArtifactKind tells the caller what a resolution produced.
type ArtifactKind string

const (
	// ArtifactNone is the definitive "no CV submitted" result, not an error
	ArtifactNone ArtifactKind = "none"
	// ArtifactTemplate is a structured CV rendered from a record or snapshot
	ArtifactTemplate ArtifactKind = "template"
	// ArtifactFile is a remotely fetchable file URL
	ArtifactFile ArtifactKind = "file"
)

// Artifact is the renderable result of a resolution. Callers never receive an
// ambiguous state: exactly one of Record, Snapshot or URL is meaningful per
// Kind, and Kind ArtifactNone means "no CV", definitively.
type Artifact struct {
	Kind     ArtifactKind      `json:"kind"`
	Record   *model.CVRecord   `json:"record,omitempty"`
	Snapshot *model.CVSnapshot `json:"snapshot,omitempty"`
	URL      string            `json:"url,omitempty"`
	FileName string            `json:"file_name,omitempty"`
}

// RecordSource loads CV records, by id or by profile-level default.
type RecordSource interface {
	Load(ctx context.Context, id uuid.UUID) (*model.CVRecord, error)
	DefaultForUser(ctx context.Context, userID uuid.UUID) (*model.CVRecord, error)
}

// LegacySource reads the oldest-generation CV linking rows. Failures here are
// expected (permission rules changed across schema generations) and callers
// treat them as absence.
type LegacySource interface {
	LinkFor(ctx context.Context, candidateID uuid.UUID, postID uint) (*model.LegacyCVLink, error)
}

// URLResolver turns a storage path into a fetchable URL.
type URLResolver interface {
	ResolveURL(ctx context.Context, path string) (string, error)
}

// Resolver walks the CV source cascade for an application. The data behind it
// evolved through three schema generations (legacy doc links, profile-level
// default, structured cv reference with snapshot), so each step has its own
// stop-or-fallthrough rule; order and stop conditions must not be reshuffled.
type Resolver struct {
	Records RecordSource
	Legacy  LegacySource
	URLs    URLResolver
}

// NewResolver creates a Resolver over the given sources. Legacy and URLs may
// be nil, which disables their steps.
func NewResolver(records RecordSource, legacy LegacySource, urls URLResolver) *Resolver {
	return &Resolver{Records: records, Legacy: legacy, URLs: urls}
}

// Resolve determines the CV artifact for an application.
//
// Step 1: explicit library reference. The intent is unambiguous, so a missing
// record is a hard, user-visible error — it never falls through.
// Step 2: legacy link row, strictly best-effort; any failure falls through.
// Step 3: the candidate's default CV.
// Step 4: direct file URL or storage path carried on the application.
// Step 5: a local-scheme URL is blocked as stale data, a hard error distinct
// from "no CV".
// Step 6: nothing anywhere — a valid "no CV submitted" result.
func (r *Resolver) Resolve(ctx context.Context, app *model.Application) (Artifact, error) {
	// Step 1: explicit library reference
	if app.CVKind == model.CVRefLibrary && app.CVID != nil {
		rec, err := r.Records.Load(ctx, *app.CVID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return Artifact{}, fmt.Errorf("application %s references cv %s: %w", app.ID, *app.CVID, apperr.ErrCVGone)
			}
			return Artifact{}, err
		}
		return artifactFromRecord(rec)
	}

	// Step 2: legacy link, best-effort only
	if r.Legacy != nil {
		if art, ok := r.resolveLegacy(ctx, app); ok {
			return art, nil
		}
	}

	// Step 3: profile-level default CV
	if rec, err := r.Records.DefaultForUser(ctx, app.CandidateID); err == nil {
		return artifactFromRecord(rec)
	} else if !errors.Is(err, apperr.ErrNoDefaultCV) && !errors.Is(err, apperr.ErrNotFound) {
		logDev("cv resolver: default lookup failed for %s: %v", app.CandidateID, err)
	}

	// Step 4: direct URL or storage path on the application itself
	if app.CVURL != "" {
		url := app.CVURL
		if !isRemoteURL(url) && !isLocalReference(url) && r.URLs != nil {
			resolved, err := r.URLs.ResolveURL(ctx, url)
			if err != nil {
				logDev("cv resolver: could not resolve storage path %q: %v", url, err)
				return Artifact{Kind: ArtifactNone}, nil
			}
			url = resolved
		}

		// Step 5: block local file references outright — stale data, not absence
		if isLocalReference(url) {
			return Artifact{}, fmt.Errorf("cv url %q: %w", url, apperr.ErrLocalCVReference)
		}

		return Artifact{Kind: ArtifactFile, URL: url, FileName: app.CVFileName}, nil
	}

	// Step 6: definitive "no CV submitted"
	return Artifact{Kind: ArtifactNone}, nil
}

// ResolveAttachment renders a quick-post attachment. The snapshot is always
// authoritative; the cv_id back-reference is a convenience only.
func (r *Resolver) ResolveAttachment(ctx context.Context, att *model.QuickPostAttachment) (Artifact, error) {
	switch att.Type {
	case model.AttachmentTemplate:
		if att.CVSnapshot != nil {
			return Artifact{Kind: ArtifactTemplate, Snapshot: att.CVSnapshot}, nil
		}
		// Snapshot missing: older rows carried only the reference.
		if att.CVID != nil {
			rec, err := r.Records.Load(ctx, *att.CVID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return Artifact{}, fmt.Errorf("attachment %s references cv %s: %w", att.ID, *att.CVID, apperr.ErrCVGone)
				}
				return Artifact{}, err
			}
			return artifactFromRecord(rec)
		}
		return Artifact{Kind: ArtifactNone}, nil
	case model.AttachmentExternal:
		if att.ExternalURL == "" {
			return Artifact{Kind: ArtifactNone}, nil
		}
		if isLocalReference(att.ExternalURL) {
			return Artifact{}, fmt.Errorf("attachment url %q: %w", att.ExternalURL, apperr.ErrLocalCVReference)
		}
		return Artifact{Kind: ArtifactFile, URL: att.ExternalURL}, nil
	default:
		return Artifact{Kind: ArtifactNone}, nil
	}
}

// resolveLegacy tries the legacy link row. Every failure is swallowed: legacy
// data is best-effort by contract.
func (r *Resolver) resolveLegacy(ctx context.Context, app *model.Application) (Artifact, bool) {
	link, err := r.Legacy.LinkFor(ctx, app.CandidateID, app.PostID)
	if err != nil || link == nil {
		if err != nil {
			logDev("cv resolver: legacy link lookup failed for %s/%d: %v", app.CandidateID, app.PostID, err)
		}
		return Artifact{}, false
	}

	if link.CVID != nil {
		rec, err := r.Records.Load(ctx, *link.CVID)
		if err != nil {
			logDev("cv resolver: legacy cv %s not loadable: %v", *link.CVID, err)
			return Artifact{}, false
		}
		art, err := artifactFromRecord(rec)
		if err != nil {
			return Artifact{}, false
		}
		return art, true
	}

	if link.CVSource != "" && isRemoteURL(link.CVSource) {
		return Artifact{Kind: ArtifactFile, URL: link.CVSource}, true
	}

	return Artifact{}, false
}

func artifactFromRecord(rec *model.CVRecord) (Artifact, error) {
	if rec.Type == model.CVTypeUploaded {
		if rec.FileURL == "" {
			return Artifact{Kind: ArtifactNone}, nil
		}
		if isLocalReference(rec.FileURL) {
			return Artifact{}, fmt.Errorf("cv %s file url %q: %w", rec.ID, rec.FileURL, apperr.ErrLocalCVReference)
		}
		return Artifact{Kind: ArtifactFile, Record: rec, URL: rec.FileURL, FileName: rec.FileName}, nil
	}
	return Artifact{Kind: ArtifactTemplate, Record: rec}, nil
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// isLocalReference reports whether s points into some device's local storage.
// Such a reference cannot be valid for a remote viewer.
func isLocalReference(s string) bool {
	return strings.HasPrefix(s, "file://") ||
		strings.HasPrefix(s, "content://") ||
		strings.HasPrefix(s, "/data/") ||
		strings.HasPrefix(s, "/var/mobile/")
}

func logDev(format string, args ...interface{}) {
	if gin.IsDebugging() {
		log.Printf(format, args...)
	}
}
