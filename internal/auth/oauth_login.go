package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	// Auto load .env file
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

// GoogleUserInfoEndpoint is Google's OIDC userinfo endpoint.
const GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// NewGoogleOauthConfig builds the OAuth2 config for Google sign-in from env.
func NewGoogleOauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_AUTH_CLIENT"),
		ClientSecret: os.Getenv("GOOGLE_AUTH_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: os.Getenv("GOOGLE_AUTH_REDIRECT"),
	}
}

// OauthLoginHandler struct holds the database connection and OAuth2 configuration for handling OAuth login.
type OauthLoginHandler struct {
	DB               *database.DBinstanceStruct
	OauthConfig      *oauth2.Config
	UserInfoEndpoint string
}

type code struct {
	Code string `json:"code" binding:"required"`
}

// NewOauthLoginHandler creates a new instance of OauthLoginHandler with the provided database connection and OAuth2 configuration.
func NewOauthLoginHandler(db *database.DBinstanceStruct, oauthConfig *oauth2.Config, userInfoEndpoint string) *OauthLoginHandler {
	return &OauthLoginHandler{
		DB:               db,
		OauthConfig:      oauthConfig,
		UserInfoEndpoint: userInfoEndpoint,
	}
}

func (h *OauthLoginHandler) getUserInfo(c *gin.Context) (model.GoogleUserInfo, error) {

	var code code
	var uInfo model.GoogleUserInfo

	// check does body has code
	if err := c.ShouldBindJSON(&code); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("No authorization code provided: %v", err.Error()),
		})
		return uInfo, err
	}

	// Exchange code with google and get userinfo
	token, err := h.OauthConfig.Exchange(
		context.Background(),
		code.Code,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to receive token: %v", err.Error()),
		})
		return uInfo, err
	}

	client := h.OauthConfig.Client(context.Background(), token)
	resp, err := client.Get(h.UserInfoEndpoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: %v", err.Error()),
		})
		return uInfo, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close userinfo response body: %v", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		var bodyBytes []byte
		if resp.Body != nil {
			bodyBytes, _ = io.ReadAll(resp.Body)
		}
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: status=%d body=%s", resp.StatusCode, string(bodyBytes)),
		})
		return uInfo, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(&uInfo)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to decode user info: %v", err.Error()),
		})
		return uInfo, err
	}
	return uInfo, nil
}

func (h *OauthLoginHandler) loginOrRegisterUser(userModel model.UserModel, uinfo model.GoogleUserInfo, c *gin.Context) {

	var user model.User
	respStatus := http.StatusOK

	err := h.DB.Where("google_id = ?", uinfo.GID).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):

		userModel.FillGoogleInfo(uinfo)

		if err := h.DB.Create(userModel).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %v", err.Error()),
			})
			return
		}

		respStatus = http.StatusCreated
	case err == nil:

		if err := h.DB.Preload("User").Where("user_id = ?", user.ID).First(userModel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: "You already registered as a different user type",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve user data: %v", err.Error()),
			})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %v", err.Error()),
		})
		return
	}

	// TODO: change this when implementing refresh token
	accessToken, _, err := GenerateStandardToken(userModel.GetID())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(respStatus, userModel.GetLoginResponse(accessToken))
}

// CandidateGoogleLoginHandler exchanges an authorization code and logs in (or
// registers) a candidate account.
// @Summary Google login for candidates
// @Tags Auth
// @Accept json
// @Produce json
// @Param Code body code true "Authorization code from Google"
// @Success 200 {object} model.CandidateResponse
// @Success 201 {object} model.CandidateResponse "New account created"
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 500 {object} utilities.ErrorResponse
// @Router /auth/google/candidate [post]
func (h *OauthLoginHandler) CandidateGoogleLoginHandler(c *gin.Context) {
	uInfo, err := h.getUserInfo(c)
	if err != nil {
		return
	}
	h.loginOrRegisterUser(&model.CandidateUser{}, uInfo, c)
}

// EmployerGoogleLoginHandler exchanges an authorization code and logs in (or
// registers) an employer account.
// @Summary Google login for employers
// @Tags Auth
// @Accept json
// @Produce json
// @Param Code body code true "Authorization code from Google"
// @Success 200 {object} model.CompanyResponse
// @Success 201 {object} model.CompanyResponse "New account created"
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 500 {object} utilities.ErrorResponse
// @Router /auth/google/employer [post]
func (h *OauthLoginHandler) EmployerGoogleLoginHandler(c *gin.Context) {
	uInfo, err := h.getUserInfo(c)
	if err != nil {
		return
	}
	h.loginOrRegisterUser(&model.CompanyUser{}, uInfo, c)
}
