// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jobpath-backend/internal/auth"
	admctl "jobpath-backend/internal/controller/admin"
	appctl "jobpath-backend/internal/controller/application"
	candctl "jobpath-backend/internal/controller/candidate"
	compctl "jobpath-backend/internal/controller/company"
	cvctl "jobpath-backend/internal/controller/cv"
	filectl "jobpath-backend/internal/controller/file"
	postctl "jobpath-backend/internal/controller/jobpost"
	cvlib "jobpath-backend/internal/cv"
	"jobpath-backend/internal/middleware"
	"jobpath-backend/internal/model"

	"os"
	"strings"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	// Init swagger doc
	_ "jobpath-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrgins := strings.Split(allowOrginsStr, ",")

	gAuth := auth.NewOauthLoginHandler(s.DB, auth.NewGoogleOauthConfig(), auth.GoogleUserInfoEndpoint)
	lAuth := auth.NewLocalAuthHandler(s.DB)
	logout := auth.NewLogoutController(s.Blacklist)

	fileController := filectl.NewFileController(s.DB, s.Storage)
	resolver := cvlib.NewResolver(cvlib.NewStore(s.DB), cvlib.NewDBLegacySource(s.DB), fileController)

	applicationController := appctl.NewApplicationController(s.DB, resolver)
	cvController := cvctl.NewCVController(s.DB)
	candidateController := candctl.NewCandidateController(s.DB)
	companyController := compctl.NewCompanyController(s.DB)
	adminController := admctl.NewAdminController(s.DB)
	jobPostController := postctl.NewJobPostController(s.DB)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrgins, // Add your frontend URL
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Enable cookies/auth
	}))
	r.Use(middleware.SafeHeader())
	r.Use(middleware.EnvRateLimitMiddleware())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("google/candidate", gAuth.CandidateGoogleLoginHandler)
			authRoute.POST("google/employer", gAuth.EmployerGoogleLoginHandler)

			authRoute.POST("login", lAuth.LoginHandler)
			authRoute.POST("register", lAuth.RegisterHandler)
		}
		// Any routes
		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB), middleware.JwtBlacklistCheck(s.Blacklist))

			needAuth.POST("auth/logout", logout.LogoutHandler)

			fileRoute := needAuth.Group("/file")
			{
				fileRoute.GET(":id", fileController.GetFile)
			}

			companyRoute := needAuth.Group("/company")
			{
				companyRoute.GET(":company_id", companyController.GetCompanyByID)
				companyRoute.Use(middleware.CheckRole(model.RoleEmployer))
				companyRoute.PATCH("profile", companyController.EditCompanyProfile)
				companyRoute.POST("profile/logo", middleware.SizeLimit(10<<20), fileController.UploadLogo)
				companyRoute.POST("profile/banner", middleware.SizeLimit(10<<20), fileController.UploadBanner)
				companyRoute.GET("myprofile", companyController.GetCompanyProfile)
			}

			jobPostRoute := needAuth.Group("/jobpost")
			{
				jobPostRoute.GET(":id", jobPostController.GetPostByID)
				jobPostRoute.GET("", jobPostController.GetPosts)
				jobPostRoute.POST("", middleware.CheckRole(model.RoleEmployer), jobPostController.CreateJobPostHandler)
				jobPostRoute.PATCH(":id", middleware.CheckRole(model.RoleEmployer), jobPostController.EditJobPost)
				jobPostRoute.DELETE(":id", middleware.CheckRole(model.RoleAdmin, model.RoleEmployer), jobPostController.DeleteJobPost)
			}

			applicationRoute := needAuth.Group("/application")
			{
				applicationRoute.GET(":id/cv", applicationController.ResolveCVHandler)

				needCandidate := applicationRoute.Group("")
				{
					needCandidate.Use(middleware.CheckRole(model.RoleCandidate))
					needCandidate.POST("", applicationController.ApplyHandler)
					needCandidate.GET("me", applicationController.MyApplicationsHandler)
					needCandidate.GET("status/:post_id", applicationController.StatusHandler)
					needCandidate.POST("withdraw/:post_id", applicationController.WithdrawHandler)
				}

				needEmployer := applicationRoute.Group("")
				{
					needEmployer.Use(middleware.CheckRole(model.RoleAdmin, model.RoleEmployer))
					needEmployer.GET("post/:post_id", applicationController.PostApplicationsHandler)
					needEmployer.PATCH(":id/status", applicationController.UpdateStatusHandler)
				}
			}

			needAdmin := needAuth.Group("")
			{
				needAdmin.Use(middleware.CheckRole(model.RoleAdmin))
				needAdmin.GET("get-companies", adminController.GetCompanies)
				needAdmin.GET("get-candidates", adminController.GetCandidates)
				needAdmin.PATCH("verify-company/:company_id", adminController.VerifyCompany)
			}

			// Candidate routes: apply role check once for all candidate endpoints
			needCandidate := needAuth.Group("")
			{
				needCandidate.Use(middleware.CheckRole(model.RoleCandidate))
				candidateRoute := needCandidate.Group("/candidate")
				{
					candidateRoute.PATCH("profile", candidateController.EditProfile)
					candidateRoute.GET("myprofile", candidateController.GetMyProfile)
				}

				cvRoute := needCandidate.Group("/cv")
				{
					cvRoute.POST("", cvController.CreateHandler)
					cvRoute.POST("upload", middleware.SizeLimit(10<<20), fileController.UploadCV)
					cvRoute.GET("me", cvController.ListMineHandler)
					cvRoute.GET("default", cvController.DefaultHandler)
					cvRoute.GET(":id", cvController.GetHandler)
					cvRoute.PUT(":id", cvController.UpdateHandler)
					cvRoute.DELETE(":id", cvController.DeleteHandler)
					cvRoute.POST(":id/default", cvController.SetDefaultHandler)
				}
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
