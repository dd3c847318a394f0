package handlers

const (
	oauthStateCookie = "otw_oauth_state"
	oauthGroupCookie = "otw_oauth_group"

	// avatars arrive base64 encoded inside the JSON body
	maxBodyBytes = 4 << 20

	ErrInvalidJSON         = "invalid JSON body"
	ErrUnauthorized        = "unauthorized"
	ErrInvalidCredentials  = "invalid credentials"
	ErrInternalServerError = "internal server error"
	ErrTooManyRequests     = "too many requests"
)
