// Package admin provides HTTP handlers for platform administration.
package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

// AdminController handles administration endpoints
type AdminController struct {
	DB *database.DBinstanceStruct
}

// NewAdminController creates a new instance of AdminController
func NewAdminController(db *database.DBinstanceStruct) *AdminController {
	return &AdminController{
		DB: db,
	}
}

// GetCompanies queries companies from the database, optionally filtered by
// verification status.
// @Summary Get companies based on given query
// @Description Only admin can access this endpoint
// @Description If no query given, the server will return all companies
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param verify query string false "Space-separated list of pending, verified, or rejected, case insensitive" example(pending rejected)
// @Success 200 {array} model.CompanyUser
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/get-companies [get]
func (jc *AdminController) GetCompanies(c *gin.Context) {
	rawVerify := c.Query("verify")

	result := jc.DB.Preload("User").Preload("JobPost")
	if rawVerify != "" {
		verify := strings.Split(rawVerify, " ")
		for i := range verify {
			verify[i] = strings.ToLower(verify[i])
		}
		result = result.Where("verified_status IN ?", verify)
	}

	var companyUser []model.CompanyUser

	result = result.Find(&companyUser)

	if err := result.Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, companyUser)
}

// GetCandidates returns all candidate profiles.
// @Summary Get all candidates
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.CandidateUser
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/get-candidates [get]
func (jc *AdminController) GetCandidates(c *gin.Context) {
	var candidateUser []model.CandidateUser

	if err := jc.DB.Preload("User").Find(&candidateUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, candidateUser)
}

// VerifyCompany allows an admin to change the verification status of the
// given company to verified or rejected.
// @Summary Verify or reject companies
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Param status query string false "Status is case insensitive and allows only verified or rejected (verified by default)" default(verified)
// @Success 200 {object} model.CompanyUser
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or unknown status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Given company ID not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/verify-company/{company_id} [patch]
func (jc *AdminController) VerifyCompany(c *gin.Context) {
	companyID := c.Param("company_id")
	status := c.Query("status")

	if status == "" {
		status = model.StatusVerified
	}

	status = strings.ToLower(status)
	allowedStatus := map[string]bool{
		model.StatusVerified: true,
		model.StatusRejected: true,
	}

	if !allowedStatus[status] {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", status),
		})
		return
	}

	var company model.CompanyUser
	err := jc.DB.Preload("User").Where("user_id = ?", companyID).First(&company).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: fmt.Sprintf("%s does not exist in the database", companyID),
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}
	company.VerifiedStatus = status

	if err := jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).
		Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}
