// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// SignupRequest represents the operator registration form data
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	DisplayName     string `json:"display_name" validate:"required,max=255"`
}

// SignupResponse represents the response after successful registration
type SignupResponse struct {
	Message string  `json:"message"`
	User    UserDTO    `json:"user"`
	Session SessionDTO `json:"session"`
}

// SigninRequest represents the sign-in form data
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// SigninResponse represents the response after successful sign-in
type SigninResponse struct {
	Message string     `json:"message"`
	User    UserDTO    `json:"user"`
	Session SessionDTO `json:"session"`
}

// SignoutResponse represents the response after sign-out
type SignoutResponse struct {
	Message string `json:"message"`
}

// UserDTO represents operator data for API responses
type UserDTO struct {
	ID          uint       `json:"id"`
	UUID        string     `json:"uuid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	IsActive    *bool      `json:"is_active"`
	CreatedAt   string     `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// SessionDTO represents an issued token pair
type SessionDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	CreatedAt    string  `json:"created_at"`
}
