package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleStaff         Role = "staff"
	RoleBranchManager Role = "branch_manager"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Name         string             `bson:"name" json:"name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleBranchManager:
		return true
	default:
		return false
	}
}

// staffPages are the dashboard sections the staff role can open. Admins see
// everything; branch managers only see the dashboard.
var staffPages = []string{
	"dashboard",
	"vt",
	"requests",
	"cars",
	"inventory",
	"activity",
	"media",
}

// CanAccessPage reports whether the user's role may open the named page.
func (u *User) CanAccessPage(page string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleStaff:
		for _, p := range staffPages {
			if p == page {
				return true
			}
		}
		return false
	case RoleBranchManager:
		return page == "dashboard"
	default:
		return false
	}
}

// CanApprove reports whether the role may flip transfer approval flags. Only
// the admin role carries this; the finance flag has no separate role today.
func (u *User) CanApprove() bool {
	return u.Role == RoleAdmin
}
