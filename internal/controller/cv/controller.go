// Package cv provides HTTP handlers for the candidate's CV library.
package cv

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"jobpath-backend/internal/apperr"
	cvlib "jobpath-backend/internal/cv"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

// CVController handles CV library endpoints
type CVController struct {
	DB    *database.DBinstanceStruct
	Store *cvlib.Store
}

// NewCVController creates a new instance of CVController with the provided database connection.
func NewCVController(db *database.DBinstanceStruct) *CVController {
	return &CVController{
		DB:    db,
		Store: cvlib.NewStore(db),
	}
}

type cvRequest struct {
	Type         model.CVType         `json:"type" binding:"required,oneof=template uploaded"`
	Title        string               `json:"title"`
	PersonalInfo model.CVPersonalInfo `json:"personal_info"`
	Sections     model.CVSections     `json:"sections"`
	Skills       pq.StringArray       `json:"skills"`
	FileURL      string               `json:"file_url"`
	FileName     string               `json:"file_name"`
}

// CreateHandler stores a new CV in the signed-in candidate's library.
// @Summary Create a CV
// @Description The first CV a candidate creates automatically becomes the default.
// @Tags CV
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param cv body cvRequest true "CV content"
// @Success 201 {object} model.CVRecord
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as candidate"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv [post]
func (jc *CVController) CreateHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req cvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	rec := model.CVRecord{
		UserID:       user.ID,
		Type:         req.Type,
		Title:        req.Title,
		PersonalInfo: req.PersonalInfo,
		Sections:     req.Sections,
		Skills:       req.Skills,
		FileURL:      req.FileURL,
		FileName:     req.FileName,
	}

	if _, err := jc.Store.Save(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save CV: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// ListMineHandler lists the candidate's CV library, default first.
// @Summary List own CVs
// @Tags CV
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.CVRecord
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/me [get]
func (jc *CVController) ListMineHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	recs, err := jc.Store.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to list CVs: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, recs)
}

// GetHandler fetches one CV from the candidate's own library.
// @Summary Get one of my CVs
// @Tags CV
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "CV ID"
// @Success 200 {object} model.CVRecord
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "CV not found or owned by someone else"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/{id} [get]
func (jc *CVController) GetHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid CV id"})
		return
	}

	rec, err := jc.Store.Load(c.Request.Context(), id)
	if err != nil {
		kind := apperr.Classify(err)
		c.JSON(kind.HTTPStatus(), utilities.ErrorResponse{Error: err.Error()})
		return
	}
	// Ownership failures read as absence so ids cannot be probed.
	if rec.UserID != user.ID {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "CV not found"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// UpdateHandler overwrites the content of one of the candidate's CVs. The
// owner, id and default flag cannot be changed through this endpoint.
// @Summary Update a CV
// @Tags CV
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "CV ID"
// @Param cv body cvRequest true "New CV content"
// @Success 200 {object} model.CVRecord
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "CV not found or owned by someone else"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/{id} [put]
func (jc *CVController) UpdateHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid CV id"})
		return
	}

	rec, err := jc.Store.Load(c.Request.Context(), id)
	if err != nil {
		kind := apperr.Classify(err)
		c.JSON(kind.HTTPStatus(), utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if rec.UserID != user.ID {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "CV not found"})
		return
	}

	var req cvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	rec.Type = req.Type
	rec.Title = req.Title
	rec.PersonalInfo = req.PersonalInfo
	rec.Sections = req.Sections
	rec.Skills = req.Skills
	rec.FileURL = req.FileURL
	rec.FileName = req.FileName

	if _, err := jc.Store.Save(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save CV: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// DeleteHandler removes a CV from the candidate's library. Applications that
// took a snapshot of it keep their copy.
// @Summary Delete a CV
// @Tags CV
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "CV ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "CV not found or owned by someone else"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/{id} [delete]
func (jc *CVController) DeleteHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid CV id"})
		return
	}

	if err := jc.Store.Delete(c.Request.Context(), user.ID, id); err != nil {
		kind := apperr.Classify(err)
		c.JSON(kind.HTTPStatus(), utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "CV deleted"})
}

// SetDefaultHandler marks one CV as the candidate's default.
// @Summary Set the default CV
// @Tags CV
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "CV ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "CV not found or owned by someone else"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/{id}/default [post]
func (jc *CVController) SetDefaultHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid CV id"})
		return
	}

	if err := jc.Store.SetDefault(c.Request.Context(), user.ID, id); err != nil {
		kind := apperr.Classify(err)
		c.JSON(kind.HTTPStatus(), utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Default CV updated"})
}

// DefaultHandler returns the candidate's default CV.
// @Summary Get the default CV
// @Tags CV
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.CVRecord
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "No default CV configured"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/default [get]
func (jc *CVController) DefaultHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	rec, err := jc.Store.DefaultForUser(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNoDefaultCV) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load default CV: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}
