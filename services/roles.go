package services

import (
	"fmt"
	"strings"

	"cafe-pos/models"
)

type Screen string

const (
	ScreenCashier Screen = "cashier"
	ScreenManager Screen = "manager"
	ScreenAdmin   Screen = "admin"
)

// ScreenForRole maps a role returned by login to the screen set it may use.
func ScreenForRole(role string) (Screen, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleCashier:
		return ScreenCashier, nil
	case models.RoleManager:
		return ScreenManager, nil
	case models.RoleAdmin:
		return ScreenAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
}
