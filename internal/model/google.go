package model

import "github.com/google/uuid"

// GoogleUserInfo is the subset of Google's userinfo payload the login flow
// consumes.
type GoogleUserInfo struct {
	GID       string `json:"sub"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Email     string `json:"email"`
	Picture   string `json:"picture"`
}

// UserModel is implemented by role-specific profiles so the OAuth login flow
// can register and respond without switching on role.
type UserModel interface {
	GetID() uuid.UUID
	FillGoogleInfo(info GoogleUserInfo)
	GetLoginResponse(accessToken string) interface{}
}

// GetID returns the candidate's user id.
func (u *CandidateUser) GetID() uuid.UUID { return u.UserID }

// FillGoogleInfo populates a fresh candidate profile from Google userinfo.
func (u *CandidateUser) FillGoogleInfo(info GoogleUserInfo) {
	u.User.Username = info.FirstName
	u.User.Email = &info.Email
	u.User.GoogleID = info.GID
	u.User.Role = RoleCandidate
	u.User.ProfilePicture = info.Picture
	u.FirstName = info.FirstName
	u.LastName = info.LastName
}

// GetLoginResponse builds the login payload for a candidate.
func (u *CandidateUser) GetLoginResponse(accessToken string) interface{} {
	return CandidateResponse{User: *u, AccessToken: accessToken}
}

// GetID returns the company's user id.
func (u *CompanyUser) GetID() uuid.UUID { return u.UserID }

// FillGoogleInfo populates a fresh company profile from Google userinfo.
func (u *CompanyUser) FillGoogleInfo(info GoogleUserInfo) {
	u.User.Username = info.FirstName
	u.User.Email = &info.Email
	u.User.GoogleID = info.GID
	u.User.Role = RoleEmployer
	u.User.ProfilePicture = info.Picture
}

// GetLoginResponse builds the login payload for a company.
func (u *CompanyUser) GetLoginResponse(accessToken string) interface{} {
	return CompanyResponse{User: *u, AccessToken: accessToken}
}
