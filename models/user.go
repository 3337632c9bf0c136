package models

const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	ID          string
	Username    string
	DisplayName string
	Role        string
}

// LoginResult is a successful login: bearer token plus the user it belongs to.
type LoginResult struct {
	AccessToken string
	User        User
}

func ValidRole(r string) bool {
	return r == RoleCashier || r == RoleManager || r == RoleAdmin
}

// NewUser is a staff account to register (admin screen).
type NewUser struct {
	DisplayName string
	Username    string
	Password    string
	Role        string
}

// UserUpdate is the editable part of a staff account. Passwords are not
// changed through it.
type UserUpdate struct {
	DisplayName string
	Username    string
	Role        string
}
