// Package candidate provides HTTP handlers for candidate profile operations.
package candidate

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

// CandidateController handles candidate profile endpoints
type CandidateController struct {
	DB *database.DBinstanceStruct
}

// NewCandidateController creates a new instance of CandidateController
func NewCandidateController(db *database.DBinstanceStruct) *CandidateController {
	return &CandidateController{
		DB: db,
	}
}

type editCandidateProfile struct {
	model.EditableCandidateInfo
	model.ContactInfo
}

// EditProfile handles editing a candidate's profile information, including
// retrieving the original profile from the database, merging the edited
// fields, and saving the changes.
// @Summary Edit candidate profile
// @Description Overwrite candidate profile and save into database.
// @Description Sensitive fields like id, role and password can't be overwritten.
// @Tags Candidate
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param candidate_profile body editCandidateProfile true "Candidate info to be written"
// @Success 200 {object} model.CandidateUser "Successfully overwrite"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as candidate"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidate/profile [patch]
func (jc *CandidateController) EditProfile(c *gin.Context) {

	var candidateUser = model.CandidateUser{}

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	// Retrieve original profile from DB
	if err := jc.DB.Preload("User").Where("user_id = ?", user.ID.String()).First(&candidateUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user information from database: %s", err.Error()),
		})
		return
	}

	edited := editCandidateProfile{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&edited); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&candidateUser.User.ContactInfo, &edited.ContactInfo)
	utilities.MergeNonEmpty(&candidateUser.EditableCandidateInfo, &edited.EditableCandidateInfo)

	if err := jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&candidateUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, candidateUser)
}

// GetMyProfile retrieves the signed-in candidate's profile from the database
// and returns it as a JSON response.
// @Summary Retrieve candidate profile from database
// @Tags Candidate
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.CandidateUser "Successfully retrieve candidate profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as candidate"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidate/myprofile [get]
func (jc *CandidateController) GetMyProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	candidateUser := model.CandidateUser{}

	if err := jc.DB.Preload("User").
		Where("user_id = ?", user.ID.String()).First(&candidateUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user information from database: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, candidateUser)
}
