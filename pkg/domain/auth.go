package domain

// AuthResponse is the success body of /auth/login and /auth/register.
//
// The API is inconsistent about the token field name: login answers with
// access_token, some deployments answer register with token. Both are
// accepted until the server side is unified.
type AuthResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	Token       string `json:"token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

// SessionToken returns the bearer token carried by the response, preferring
// access_token over token. ok is false when neither is present.
func (r AuthResponse) SessionToken() (token string, ok bool) {
	if r.AccessToken != "" {
		return r.AccessToken, true
	}
	if r.Token != "" {
		return r.Token, true
	}
	return "", false
}
