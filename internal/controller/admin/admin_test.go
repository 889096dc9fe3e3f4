package admin

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

func adminEngine() *gin.Engine {
	ac := NewAdminController(testDB)
	r := gin.Default()
	g := r.Group("/admin", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleAdmin))
	g.GET("/get-companies", ac.GetCompanies)
	g.GET("/get-candidates", ac.GetCandidates)
	g.PATCH("/verify-company/:company_id", ac.VerifyCompany)
	return r
}

func TestGetCompanies_AdminOnly(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	candToken, err := auth.GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := adminEngine()

	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/get-companies", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, candToken, r, "/admin/get-companies", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetCandidates(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := adminEngine()
	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/get-candidates", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyCompany(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := adminEngine()

	path := fmt.Sprintf("/admin/verify-company/%s?status=rejected", database.TestUserEmployer2.ID)
	rec, resp := testutil.MakeJSONRequest(nil, adminToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	if resp != nil {
		assert.Equal(t, model.StatusRejected, resp["verified_status"])
	}

	// default status is verified
	path = fmt.Sprintf("/admin/verify-company/%s", database.TestUserEmployer2.ID)
	rec, resp = testutil.MakeJSONRequest(nil, adminToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	if resp != nil {
		assert.Equal(t, model.StatusVerified, resp["verified_status"])
	}
}

func TestVerifyCompany_UnknownStatus(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := adminEngine()
	path := fmt.Sprintf("/admin/verify-company/%s?status=banned", database.TestUserEmployer2.ID)
	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyCompany_NotFound(t *testing.T) {
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	r := adminEngine()
	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, "/admin/verify-company/00000000-0000-0000-0000-000000000000", http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
