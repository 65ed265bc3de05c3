package api

import (
	"context"
	"time"

	"github.com/nhle/stockwatch/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	UserID      string `json:"user_id"`
}

// Login exchanges credentials for a bearer token and returns the
// resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	var payload loginPayload
	err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		UserID:      payload.UserID,
		Username:    payload.Username,
		Email:       email,
		AccessToken: payload.AccessToken,
		CreatedAt:   time.Now(),
	}, nil
}

// Register creates a new account. The caller still needs to Login
// afterwards to obtain a session.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	return c.post(ctx, "/auth/register", registerRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
}

type profilePayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile fetches the account record behind the current bearer token.
func (c *Client) Profile(ctx context.Context) (*model.Session, error) {
	var payload profilePayload
	if err := c.get(ctx, "/auth/me", &payload); err != nil {
		return nil, err
	}
	return &model.Session{
		UserID:   payload.UserID,
		Username: payload.Username,
		Email:    payload.Email,
	}, nil
}
