package jobpost

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"jobpath-backend/internal/auth"
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
	jc := NewJobPostController(testDB)
	r := gin.Default()
	g := r.Group("", middleware.RequireAuth(testDB))
	g.POST("/jobpost", middleware.CheckRole(model.RoleEmployer), jc.CreateJobPostHandler)
	g.GET("/jobpost", jc.GetPosts)
	g.GET("/jobpost/:id", jc.GetPostByID)
	g.PATCH("/jobpost/:id", middleware.CheckRole(model.RoleEmployer), jc.EditJobPost)
	g.DELETE("/jobpost/:id", middleware.CheckRole(model.RoleEmployer, model.RoleAdmin), jc.DeleteJobPost)
	return r
}

func TestCreateJobPost_VerifiedCompany(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	body := gin.H{
		"title":    "Platform Engineer",
		"desc":     "Build and run our job platform",
		"type":     "full-time",
		"location": "Bangkok",
		"tags":     []string{"go", "postgres"},
	}

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	if resp != nil {
		assert.Equal(t, "Platform Engineer", resp["title"])
		assert.Equal(t, database.TestUserEmployer1.ID.String(), resp["company_id"])
	}
}

func TestCreateJobPost_PendingCompanyForbidden(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	body := gin.H{"title": "Should not exist"}

	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	if resp != nil {
		assert.Contains(t, resp["error"], "verified")
	}
}

func TestCreateJobPost_UnknownFieldBadRequest(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	body := gin.H{"title": "x", "company_id": database.TestUserEmployer2.ID}

	rec, _ := testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPosts_SearchFilter(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/jobpost", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	path := fmt.Sprintf("/jobpost?search=%s", "no-post-has-this-title")
	req, _ := testutil.MakeJSONRequest(nil, token, r, path, http.MethodGet)
	assert.Equal(t, http.StatusOK, req.Code)
	assert.Equal(t, "[]", req.Body.String())
}

func TestGetPostByID(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	path := fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID)
	rec, resp := testutil.MakeJSONRequest(nil, token, r, path, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	if resp != nil {
		assert.Equal(t, float64(database.TestJobPost1.ID), resp["id"])
	}

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/jobpost/999999", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditJobPost_OwnershipEnforced(t *testing.T) {
	ownerToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	otherToken, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer2.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()
	path := fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID)

	rec, _ := testutil.MakeJSONRequest(gin.H{"title": "Hijacked"}, otherToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{"title": "Updated Title"}, ownerToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	if resp != nil {
		assert.Equal(t, "Updated Title", resp["title"])
	}
}

func TestDeleteJobPost(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	// create a throwaway post to delete
	post := model.JobPost{
		CompanyUserID: database.TestUserEmployer1.ID,
		EditableJobPostInfo: model.EditableJobPostInfo{
			Title: "Short-lived posting",
		},
	}
	assert.NoError(t, testDB.Create(&post).Error)

	r := newEngine()
	path := fmt.Sprintf("/jobpost/%d", post.ID)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, path, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, path, http.MethodDelete)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJobPostInlineCompany(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := newEngine()

	// a bare id referencing someone else's company is rejected
	body := gin.H{
		"title":   "Backend Engineer",
		"company": database.TestUserEmployer2.ID.String(),
	}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, resp["error"], "another company")

	// an embedded company object patches the poster's own profile
	body = gin.H{
		"title":   "Backend Engineer",
		"company": gin.H{"overview": "Inline overview from legacy payload"},
	}
	rec, resp = testutil.MakeJSONRequest(body, token, r, "/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	t.Cleanup(func() {
		if id, ok := resp["id"].(float64); ok {
			_ = testDB.Delete(&model.JobPost{}, uint(id)).Error
		}
		_ = testDB.Model(&model.CompanyUser{}).
			Where("user_id = ?", database.TestUserEmployer1.ID).
			Update("overview", database.TestCompany1.Overview).Error
	})

	var company model.CompanyUser
	assert.NoError(t, testDB.First(&company, "user_id = ?", database.TestUserEmployer1.ID).Error)
	assert.Equal(t, "Inline overview from legacy payload", company.Overview)
}
