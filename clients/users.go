package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"cafe-pos/models"
)

type wireUserUpdate struct {
	UserName string `json:"user_name"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// ListUsers returns every staff account (admin screen).
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/user", nil, true, &raw); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	rows, err := decodeList(raw, "user list")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for i, rawRow := range rows {
		var r wireUser
		if err := json.Unmarshal(rawRow, &r); err != nil {
			log.Printf("skip user row %d: %v", i, err)
			continue
		}
		users = append(users, r.toModel())
	}
	return users, nil
}

// RegisterUser creates a staff account. The endpoint takes a urlencoded form.
func (c *Client) RegisterUser(ctx context.Context, u models.NewUser) error {
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	u.Username = strings.TrimSpace(u.Username)
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	switch {
	case u.DisplayName == "":
		return models.ValidationError{Field: "user_name", Message: "name is required"}
	case u.Username == "":
		return models.ValidationError{Field: "username", Message: "username is required"}
	case u.Password == "":
		return models.ValidationError{Field: "password", Message: "password is required"}
	case !models.ValidRole(u.Role):
		return models.ValidationError{Field: "role", Message: "role must be cashier, manager or admin"}
	}

	form := url.Values{}
	form.Set("user_name", u.DisplayName)
	form.Set("role", u.Role)
	form.Set("username", u.Username)
	form.Set("password", u.Password)

	var raw json.RawMessage
	err := c.send(ctx, http.MethodPost, "/register", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), true, &raw)
	if err == nil {
		err = checkStatus(raw)
	}
	if err != nil {
		return fmt.Errorf("register %s: %w", u.Username, err)
	}
	return nil
}

// GetUser loads one staff account. The server answers either with the bare
// user object or with an envelope around it.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.ValidationError{Field: "user_id", Message: "user id is required"}
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/user/"+pathID(id), nil, true, &raw); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	if err := checkStatus(raw); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	body := raw
	var env envelope
	if json.Unmarshal(raw, &env) == nil && len(env.Data) > 0 && env.Data[0] == '{' {
		body = env.Data
	}
	var w wireUser
	if err := json.Unmarshal(body, &w); err != nil || (w.Username == "" && w.UserName == "") {
		return nil, fmt.Errorf("get user %s: %w", id, &ServerError{StatusCode: http.StatusOK, Message: "user has an unexpected format"})
	}
	u := w.toModel()
	if u.ID == "" {
		u.ID = strings.TrimSpace(id)
	}
	return &u, nil
}

// UpdateUser edits name, username and role of one account.
func (c *Client) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error {
	if strings.TrimSpace(id) == "" {
		return models.ValidationError{Field: "user_id", Message: "user id is required"}
	}
	body := wireUserUpdate{
		UserName: strings.TrimSpace(upd.DisplayName),
		Role:     strings.ToLower(strings.TrimSpace(upd.Role)),
		Username: strings.TrimSpace(upd.Username),
	}
	switch {
	case body.UserName == "":
		return models.ValidationError{Field: "user_name", Message: "name is required"}
	case body.Username == "":
		return models.ValidationError{Field: "username", Message: "username is required"}
	case !models.ValidRole(body.Role):
		return models.ValidationError{Field: "role", Message: "role must be cashier, manager or admin"}
	}
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPut, "/user/"+pathID(id), body, true, &raw)
	if err == nil {
		err = checkStatus(raw)
	}
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	return nil
}
