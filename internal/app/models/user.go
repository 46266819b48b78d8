package models

import "time"

// UserStatus is the lifecycle state of an account
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Built-in role names
const (
	RoleAdmin   = "ADMIN"
	RoleFaculty = "FACULTY"
	RoleStudent = "STUDENT"
)

// User is an account that can sign in
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       *string    `json:"phone,omitempty"`
	Status      UserStatus `json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	Roles       []string   `json:"roles"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user holds the named role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsActive reports whether the account may sign in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Role groups permissions
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsSystem    bool         `json:"isSystem"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Permission is a resource:action capability
type Permission struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RefreshToken is a persisted, revocable refresh token
type RefreshToken struct {
	ID         int64
	Token      string
	UserID     int64
	ExpiryDate time.Time
	IsRevoked  bool
	CreatedAt  time.Time
}

// PasswordResetToken is a single-use token issued after OTP verification
type PasswordResetToken struct {
	ID         int64
	Token      string
	UserID     int64
	ExpiryDate time.Time
	Used       bool
	CreatedAt  time.Time
}

// OTPPurpose scopes a one-time password
type OTPPurpose string

const (
	OTPPurposePasswordReset OTPPurpose = "PASSWORD_RESET"
)

// OTP is a hashed one-time password
type OTP struct {
	ID         int64
	UserID     int64
	Purpose    OTPPurpose
	CodeHash   string
	ExpiresAt  time.Time
	Attempts   int
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
