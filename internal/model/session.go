package model

import "time"

// Session is the authenticated identity for the current user together
// with the bearer token used on privileged API calls. It is persisted
// in the system keyring across restarts.
type Session struct {
	// UserID is the backend's identifier for the account.
	UserID string `json:"user_id"`

	// Username is the display name chosen at registration.
	Username string `json:"username"`

	// Email is the address the account was registered with.
	Email string `json:"email"`

	// AccessToken is the opaque bearer credential.
	AccessToken string `json:"access_token"`

	// CreatedAt is when this session was established locally.
	CreatedAt time.Time `json:"created_at"`
}
