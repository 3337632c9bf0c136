package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cafe-pos/clients"
	"cafe-pos/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KeyToken       = "token"
	KeyRole        = "role"
	KeyUserID      = "user_id"
	KeyUsername    = "username"
	KeyDisplayName = "display_name"
)

// CredentialStore is a key-value store of login data per operator.
type CredentialStore interface {
	Get(ctx context.Context, owner int64, key string) (string, bool, error)
	Set(ctx context.Context, owner int64, values map[string]string) error
	Delete(ctx context.Context, owner int64) error
}

// Authenticator is the remote login endpoint.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
}

// Session is one operator's view of the credential store. It satisfies
// clients.TokenSource, so the token is read before every authenticated call.
type Session struct {
	store CredentialStore
	owner int64
	now   func() time.Time
}

func NewSession(store CredentialStore, owner int64) *Session {
	return &Session{store: store, owner: owner, now: time.Now}
}

func (s *Session) Owner() int64 {
	return s.owner
}

// Token returns the stored bearer token, or clients.ErrUnauthenticated when
// it is missing or is a JWT whose exp has passed. Opaque tokens are passed through.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, s.owner, KeyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		return "", clients.ErrUnauthenticated
	}
	if tokenExpired(token, s.now()) {
		return "", fmt.Errorf("%w: token expired", clients.ErrUnauthenticated)
	}
	return token, nil
}

func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func (s *Session) Role(ctx context.Context) (string, error) {
	role, ok, err := s.store.Get(ctx, s.owner, KeyRole)
	if err != nil {
		return "", fmt.Errorf("read role: %w", err)
	}
	if !ok || role == "" {
		return "", clients.ErrUnauthenticated
	}
	return role, nil
}

// Screen resolves the current role to a screen.
func (s *Session) Screen(ctx context.Context) (Screen, error) {
	role, err := s.Role(ctx)
	if err != nil {
		return "", err
	}
	return ScreenForRole(role)
}

func (s *Session) User(ctx context.Context) (models.User, error) {
	var u models.User
	fields := []struct {
		key string
		dst *string
	}{
		{KeyUserID, &u.ID},
		{KeyUsername, &u.Username},
		{KeyDisplayName, &u.DisplayName},
		{KeyRole, &u.Role},
	}
	for _, f := range fields {
		v, _, err := s.store.Get(ctx, s.owner, f.key)
		if err != nil {
			return models.User{}, fmt.Errorf("read %s: %w", f.key, err)
		}
		*f.dst = v
	}
	if u.ID == "" {
		return models.User{}, clients.ErrUnauthenticated
	}
	return u, nil
}

func (s *Session) LoggedIn(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

func (s *Session) Save(ctx context.Context, res models.LoginResult) error {
	return s.store.Set(ctx, s.owner, map[string]string{
		KeyToken:       res.AccessToken,
		KeyRole:        strings.ToLower(res.User.Role),
		KeyUserID:      res.User.ID,
		KeyUsername:    res.User.Username,
		KeyDisplayName: res.User.DisplayName,
	})
}

// Login authenticates remotely and stores the result. Accounts whose role has
// no screen are refused and nothing is stored.
func (s *Session) Login(ctx context.Context, auth Authenticator, username, password string) (*models.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ValidationError{Field: "username", Message: "Please enter your username."}
	}
	if password == "" {
		return nil, ValidationError{Field: "password", Message: "Please enter your password."}
	}

	res, err := auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if _, err := ScreenForRole(res.User.Role); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, *res); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	return res, nil
}

func (s *Session) Logout(ctx context.Context) error {
	return s.store.Delete(ctx, s.owner)
}

// MemoryCredentials is a process-local CredentialStore.
type MemoryCredentials struct {
	mu   sync.RWMutex
	data map[int64]map[string]string
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{data: make(map[int64]map[string]string)}
}

func (m *MemoryCredentials) Get(ctx context.Context, owner int64, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[owner][key]
	return v, ok, nil
}

func (m *MemoryCredentials) Set(ctx context.Context, owner int64, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.data[owner]
	if !ok {
		kv = make(map[string]string, len(values))
		m.data[owner] = kv
	}
	for k, v := range values {
		kv[k] = v
	}
	return nil
}

func (m *MemoryCredentials) Delete(ctx context.Context, owner int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, owner)
	return nil
}
