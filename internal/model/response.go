package model

// AccessToken struct holds the access token data
type AccessToken struct {
	Token string `json:"token"`
}

// CandidateResponse struct holds the response data for candidate login or registration
type CandidateResponse struct {
	User        CandidateUser `json:"user"`
	AccessToken string        `json:"access_token"`
}

// SetAccessToken sets the access token in the CandidateResponse
func (r *CandidateResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}

// CompanyResponse struct holds the response data for employer login or registration
type CompanyResponse struct {
	User        CompanyUser `json:"user"`
	AccessToken string      `json:"access_token"`
}

// SetAccessToken sets the access token in the CompanyResponse
func (r *CompanyResponse) SetAccessToken(accessToken string) {
	r.AccessToken = accessToken
}
