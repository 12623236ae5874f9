package domain

// TokenPair is what a successful login or password reset returns: a
// short-lived access token and a longer-lived refresh token, both signed
// claim sets. Nothing is persisted for either.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}
