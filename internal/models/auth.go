package models

import "github.com/golang-jwt/jwt/v5"

// UserRole distinguishes the two dashboard roles.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
)

// JWTClaims represents the access-token payload issued by the auth
// service. Token issuance is out of scope here; the gateway only
// validates and reads these claims.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
