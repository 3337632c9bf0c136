package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cafe-pos/models"
)

type wireLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type wireUser struct {
	UserID   flexString `json:"user_id"`
	UserName string     `json:"user_name"`
	Username string     `json:"username"`
	Role     string     `json:"role"`
}

type wireLoginResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	AccessToken string   `json:"access_token"`
	User        wireUser `json:"user"`
}

// Login exchanges username/password for a bearer token. Wrong credentials
// come back as a *ServerError carrying the API's message.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.ValidationError{Field: "username", Message: "username and password are required"}
	}
	var resp wireLoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", wireLogin{Username: username, Password: password}, false, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		msg := resp.Message
		if msg == "" {
			msg = "no access token in response"
		}
		return nil, &ServerError{StatusCode: http.StatusOK, Status: resp.Status, Message: msg}
	}
	return &models.LoginResult{
		AccessToken: resp.AccessToken,
		User:        resp.User.toModel(),
	}, nil
}

func (u wireUser) toModel() models.User {
	return models.User{
		ID:          string(u.UserID),
		Username:    u.Username,
		DisplayName: u.UserName,
		Role:        strings.ToLower(strings.TrimSpace(u.Role)),
	}
}
