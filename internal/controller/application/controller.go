// Package application provides HTTP handlers for job application operations.
package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpath-backend/internal/apperr"
	applib "jobpath-backend/internal/application"
	cvlib "jobpath-backend/internal/cv"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB       *database.DBinstanceStruct
	Repo     *applib.Repository
	Jobs     *applib.DBJobSource
	Resolver *cvlib.Resolver
}

// NewApplicationController creates a new instance of ApplicationController with the provided database connection.
func NewApplicationController(db *database.DBinstanceStruct, resolver *cvlib.Resolver) *ApplicationController {
	return &ApplicationController{
		DB:       db,
		Repo:     applib.NewRepository(db),
		Jobs:     applib.NewDBJobSource(db),
		Resolver: resolver,
	}
}

type applyRequest struct {
	PostID      uint            `json:"post_id" binding:"required"`
	CVKind      model.CVRefKind `json:"cv_kind"`
	CVID        *uuid.UUID      `json:"cv_id,omitempty"`
	CVURL       string          `json:"cv_url,omitempty"`
	CVFileName  string          `json:"cv_file_name,omitempty"`
	CoverLetter string          `json:"cover_letter,omitempty"`
}

type statusUpdateRequest struct {
	Status model.ApplicationStatus `json:"status" binding:"required"`
}

// respondError maps a failed operation onto the HTTP surface through the
// shared failure taxonomy.
func respondError(c *gin.Context, err error) {
	kind := apperr.Classify(err)
	msg := err.Error()
	if generic := kind.Message(); generic != "" {
		msg = generic
	}
	c.JSON(kind.HTTPStatus(), utilities.ErrorResponse{
		Error:     msg,
		Retryable: kind.Retryable(),
	})
}

func (j *ApplicationController) session(c *gin.Context, candidateID uuid.UUID, postID uint) *applib.Session {
	return applib.NewSession(j.Repo, j.Jobs, candidateID, postID)
}

// resolveArtifact prefers the quick-post attachment when the submission has
// one: its snapshot was taken at submission time and stays immune to later CV
// edits. Submissions without an attachment walk the reference cascade.
func (j *ApplicationController) resolveArtifact(ctx context.Context, app *model.Application) (cvlib.Artifact, error) {
	var att model.QuickPostAttachment
	err := j.DB.WithContext(ctx).
		Where("application_id = ?", app.ID).
		Order("created_at DESC").
		First(&att).Error
	if err == nil {
		return j.Resolver.ResolveAttachment(ctx, &att)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return cvlib.Artifact{}, err
	}
	return j.Resolver.Resolve(ctx, app)
}

// ApplyHandler submits a job application for the signed-in candidate.
// @Summary Apply to a job post
// @Description Only candidate users can access this endpoint. Re-applying is
// @Description allowed after a previous application was withdrawn or rejected.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body applyRequest true "Application information"
// @Success 201 {object} applib.StatusView "Successfully applied to job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body, duplicate application, or ownerless post"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as candidate"
// @Failure 404 {object} utilities.ErrorResponse "Job post or CV not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [post]
func (j *ApplicationController) ApplyHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	ref := model.CVReference{
		CVKind:     req.CVKind,
		CVID:       req.CVID,
		CVURL:      req.CVURL,
		CVFileName: req.CVFileName,
	}
	if ref.CVKind == "" {
		ref.CVKind = model.CVRefNone
	}
	if ref.CVKind == model.CVRefLibrary {
		if ref.CVID == nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "cv_id is required when cv_kind is library",
			})
			return
		}
		// The reference must resolve at submission time; a dead id would
		// otherwise surface only when the employer opens the application.
		if _, err := j.Resolver.Records.Load(c.Request.Context(), *ref.CVID); err != nil {
			respondError(c, err)
			return
		}
	}

	s := j.session(c, user.ID, req.PostID)
	defer s.Close()

	view, err := s.Apply(c.Request.Context(), ref, req.CoverLetter)
	if err != nil {
		respondError(c, err)
		return
	}

	// A library CV is attached as an immutable snapshot so later edits or
	// deletion of the record never change what the employer sees. The
	// submission stands even if the snapshot write fails; viewers then fall
	// back to the live record through the resolver cascade.
	if ref.CVKind == model.CVRefLibrary && view.ApplicationID != uuid.Nil {
		att, err := cvlib.AttachLibraryCV(c.Request.Context(), j.Resolver.Records, view.ApplicationID, *ref.CVID)
		if err == nil {
			err = j.DB.WithContext(c.Request.Context()).Create(att).Error
		}
		if err != nil {
			log.Printf("Failed to snapshot cv %s for application %s: %s", ref.CVID, view.ApplicationID, err)
		}
	}

	c.JSON(http.StatusCreated, view)
}

// StatusHandler reports the candidate's relationship with one job post.
// @Summary Get application status for a job post
// @Description Returns the derived relationship flags for the signed-in
// @Description candidate. A candidate with no application sees can_reapply=true.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param post_id path integer true "Job post ID"
// @Success 200 {object} applib.StatusView
// @Failure 400 {object} utilities.ErrorResponse "Invalid post id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 503 {object} utilities.ErrorResponse "Service unreachable"
// @Router /application/status/{post_id} [get]
func (j *ApplicationController) StatusHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid post id"})
		return
	}

	s := j.session(c, user.ID, uint(postID))
	defer s.Close()

	view, err := s.RefreshStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// WithdrawHandler withdraws the candidate's application for a job post.
// @Summary Withdraw an application
// @Description Withdrawing an already-withdrawn application succeeds without
// @Description effect. Accepted or rejected applications cannot be withdrawn.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param post_id path integer true "Job post ID"
// @Success 200 {object} applib.StatusView "can_reapply is already true in the response"
// @Failure 400 {object} utilities.ErrorResponse "Application is accepted or rejected"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "No application for this post"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/withdraw/{post_id} [post]
func (j *ApplicationController) WithdrawHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid post id"})
		return
	}

	s := j.session(c, user.ID, uint(postID))
	defer s.Close()

	view, err := s.Withdraw(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// MyApplicationsHandler lists every application the candidate ever made.
// @Summary List own applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/me [get]
func (j *ApplicationController) MyApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	apps, err := j.Repo.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// PostApplicationsHandler lists submitted applications for one of the
// employer's own job posts. Drafts never appear here.
// @Summary List applications for a job post
// @Description Only the employer owning the post can access this endpoint
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param post_id path integer true "Job post ID"
// @Success 200 {array} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Post belongs to another employer"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/post/{post_id} [get]
func (j *ApplicationController) PostApplicationsHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid post id"})
		return
	}

	employerID, err := j.Jobs.EmployerFor(c.Request.Context(), uint(postID))
	if err != nil {
		respondError(c, err)
		return
	}
	if employerID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to view applications for this job post",
		})
		return
	}

	apps, err := j.Repo.ListByPost(c.Request.Context(), uint(postID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// UpdateStatusHandler applies an employer-side status transition.
// @Summary Update application status
// @Description Only the employer owning the application's post can access
// @Description this endpoint. Terminal states (accepted, rejected, withdrawn)
// @Description are final and reject any further transition.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Application ID"
// @Param status body statusUpdateRequest true "New status"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Unknown status or terminal application"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Application belongs to another employer"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/status [patch]
func (j *ApplicationController) UpdateStatusHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application id"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if !req.Status.Valid() || req.Status == model.ApplicationStatusDraft {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", req.Status),
		})
		return
	}

	app, err := j.Repo.Get(c.Request.Context(), appID)
	if err != nil {
		respondError(c, err)
		return
	}
	if app.EmployerID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to update this application",
		})
		return
	}

	updated, err := j.Repo.UpdateStatus(c.Request.Context(), appID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ResolveCVHandler resolves the CV artifact of an application through the
// source cascade.
// @Summary Resolve the CV of an application
// @Description Accessible to the applying candidate and the employer owning
// @Description the post. A response of kind "none" means no CV was submitted;
// @Description it is not an error.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Application ID"
// @Success 200 {object} cvlib.Artifact
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not a party to this application"
// @Failure 404 {object} utilities.ErrorResponse "Application missing, or referenced CV no longer exists"
// @Failure 422 {object} utilities.ErrorResponse "CV reference points at a local file"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/cv [get]
func (j *ApplicationController) ResolveCVHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application id"})
		return
	}

	app, err := j.Repo.Get(c.Request.Context(), appID)
	if err != nil {
		respondError(c, err)
		return
	}

	if app.CandidateID != user.ID && app.EmployerID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to view this application's CV",
		})
		return
	}

	artifact, err := j.resolveArtifact(c.Request.Context(), app)
	if err != nil {
		if errors.Is(err, apperr.ErrLocalCVReference) {
			c.JSON(http.StatusUnprocessableEntity, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, artifact)
}
