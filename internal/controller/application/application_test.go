package application

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"jobpath-backend/internal/auth"
	cvlib "jobpath-backend/internal/cv"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/middleware"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newEngine() *gin.Engine {
	resolver := cvlib.NewResolver(cvlib.NewStore(testDB), cvlib.NewDBLegacySource(testDB), nil)
	ac := NewApplicationController(testDB, resolver)

	r := gin.Default()
	authed := r.Group("", middleware.RequireAuth(testDB))
	candidate := authed.Group("", middleware.CheckRole(model.RoleCandidate))
	candidate.POST("/application", ac.ApplyHandler)
	candidate.GET("/application/status/:post_id", ac.StatusHandler)
	candidate.POST("/application/withdraw/:post_id", ac.WithdrawHandler)
	candidate.GET("/application/me", ac.MyApplicationsHandler)
	authed.GET("/application/post/:post_id", middleware.CheckRole(model.RoleEmployer, model.RoleAdmin), ac.PostApplicationsHandler)
	authed.PATCH("/application/:id/status", middleware.CheckRole(model.RoleEmployer, model.RoleAdmin), ac.UpdateStatusHandler)
	authed.GET("/application/:id/cv", ac.ResolveCVHandler)
	return r
}

func cleanupApplications(t *testing.T, candidateID uuid.UUID, postID uint) {
	t.Helper()
	err := testDB.Where("candidate_id = ? AND post_id = ?", candidateID, postID).
		Delete(&model.Application{}).Error
	assert.NoError(t, err)
}

func TestApplyWithdrawReapplyFlow(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate1.ID, database.TestJobPost1.ID)

	r := newEngine()
	body := gin.H{
		"post_id": database.TestJobPost1.ID,
		"cv_kind": "library",
		"cv_id":   database.TestCV1.ID,
	}

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, resp["is_applied"])
	assert.Equal(t, string(model.ApplicationStatusPending), resp["status"])

	statusPath := fmt.Sprintf("/application/status/%d", database.TestJobPost1.ID)
	rec, resp = testutil.MakeJSONRequest(nil, token, r, statusPath, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["is_applied"])
	assert.Equal(t, false, resp["can_reapply"])

	withdrawPath := fmt.Sprintf("/application/withdraw/%d", database.TestJobPost1.ID)
	rec, resp = testutil.MakeJSONRequest(nil, token, r, withdrawPath, http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(model.ApplicationStatusWithdrawn), resp["status"])
	assert.Equal(t, true, resp["can_reapply"])

	// withdrawn is reapply-eligible, so a second application succeeds
	rec, resp = testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, resp["is_applied"])
}

func TestApplyDuplicateActiveApplication(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate1.ID, database.TestJobPost2.ID)

	r := newEngine()
	body := gin.H{"post_id": database.TestJobPost2.ID, "cv_kind": "none"}

	rec, _ := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "already exists")
}

func TestApplyMissingLibraryCV(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	body := gin.H{
		"post_id": database.TestJobPost1.ID,
		"cv_kind": "library",
		"cv_id":   uuid.New(),
	}

	rec, _ := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyLibraryWithoutID(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	body := gin.H{"post_id": database.TestJobPost1.ID, "cv_kind": "library"}

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "cv_id")
}

func TestStatusWithoutApplication(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate2.ID, database.TestJobPost3.ID)

	r := newEngine()
	statusPath := fmt.Sprintf("/application/status/%d", database.TestJobPost3.ID)
	rec, resp := testutil.MakeJSONRequest(nil, token, r, statusPath, http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["is_applied"])
	assert.Equal(t, false, resp["submitted"])
	assert.Equal(t, true, resp["can_reapply"])
}

func TestWithdrawWithoutApplication(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate2.ID, database.TestJobPost3.ID)

	r := newEngine()
	withdrawPath := fmt.Sprintf("/application/withdraw/%d", database.TestJobPost3.ID)
	rec, _ := testutil.MakeJSONRequest(nil, token, r, withdrawPath, http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployerListAndStatusUpdate(t *testing.T) {
	candToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	empToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	otherEmpToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate2.ID, database.TestJobPost1.ID)

	r := newEngine()
	body := gin.H{"post_id": database.TestJobPost1.ID, "cv_kind": "none"}
	rec, resp := testutil.MakeJSONRequest(body, candToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	appID := resp["application_id"].(string)

	// owning employer sees the submitted application
	listPath := fmt.Sprintf("/application/post/%d", database.TestJobPost1.ID)
	rec, _ = testutil.MakeJSONRequest(nil, empToken, r, listPath, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	var apps []model.Application
	assert.NoError(t, testDB.Where("post_id = ? AND candidate_id = ?",
		database.TestJobPost1.ID, database.TestUserCandidate2.ID).Find(&apps).Error)
	assert.Len(t, apps, 1)

	// another employer does not
	rec, _ = testutil.MakeJSONRequest(nil, otherEmpToken, r, listPath, http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	patchPath := fmt.Sprintf("/application/%s/status", appID)

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "reviewing"}, otherEmpToken, r, patchPath, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "reviewing"}, empToken, r, patchPath, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(model.ApplicationStatusReviewing), resp["status"])

	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "accepted"}, empToken, r, patchPath, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(model.ApplicationStatusAccepted), resp["status"])

	// accepted is terminal
	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "rejected"}, empToken, r, patchPath, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "terminal")
}

func TestUpdateStatusRejectsUnknownAndDraft(t *testing.T) {
	empToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	patchPath := fmt.Sprintf("/application/%s/status", uuid.New())

	rec, _ := testutil.MakeJSONRequest(gin.H{"status": "approved"}, empToken, r, patchPath, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "draft"}, empToken, r, patchPath, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveCVAccess(t *testing.T) {
	candToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	empToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	strangerToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate1.ID, database.TestJobPost2.ID)

	r := newEngine()
	body := gin.H{
		"post_id": database.TestJobPost2.ID,
		"cv_kind": "library",
		"cv_id":   database.TestCV1.ID,
	}
	rec, resp := testutil.MakeJSONRequest(body, candToken, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	appID := resp["application_id"].(string)

	cvPath := fmt.Sprintf("/application/%s/cv", appID)

	rec, resp = testutil.MakeJSONRequest(nil, candToken, r, cvPath, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(cvlib.ArtifactTemplate), resp["kind"])

	rec, _ = testutil.MakeJSONRequest(nil, empToken, r, cvPath, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	// an employer who owns neither side is not a party to the application
	rec, _ = testutil.MakeJSONRequest(nil, strangerToken, r, cvPath, http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResolveCVSnapshotSurvivesEdit(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	cleanupApplications(t, database.TestUserCandidate1.ID, database.TestJobPost1.ID)

	r := newEngine()
	body := gin.H{
		"post_id": database.TestJobPost1.ID,
		"cv_kind": "library",
		"cv_id":   database.TestCV1.ID,
	}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/application", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	appID := resp["application_id"].(string)

	// Rename the library CV after submitting. The attachment snapshot was
	// taken at submission time, so the employer-facing artifact keeps the
	// original title.
	err = testDB.Model(&model.CVRecord{}).
		Where("id = ?", database.TestCV1.ID).
		Update("title", "Renamed CV").Error
	assert.NoError(t, err)
	t.Cleanup(func() {
		_ = testDB.Model(&model.CVRecord{}).
			Where("id = ?", database.TestCV1.ID).
			Update("title", database.TestCV1.Title).Error
	})

	rec, resp = testutil.MakeJSONRequest(nil, token, r, fmt.Sprintf("/application/%s/cv", appID), http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(cvlib.ArtifactTemplate), resp["kind"])

	snapshot, ok := resp["snapshot"].(map[string]interface{})
	assert.True(t, ok, "artifact should carry the snapshot")
	assert.Equal(t, database.TestCV1.Title, snapshot["title"])
}

func TestMyApplicationsListsOwnOnly(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/application/me", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	var apps []model.Application
	assert.NoError(t, testDB.Where("candidate_id = ?", database.TestUserCandidate1.ID).Find(&apps).Error)
	for _, a := range apps {
		assert.Equal(t, database.TestUserCandidate1.ID, a.CandidateID)
	}
}
