package dto

import (
	"time"

	"github.com/spec-kit/dealership/internal/domain"
)

// RegisterRequest payload for new customers.
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"redirect" form:"redirect"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"redirect" form:"redirect"`
}

// IdentityResponse is the public view of an identity.
type IdentityResponse struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Active bool        `json:"active"`
}

// NewIdentityResponse maps a domain identity.
func NewIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:     identity.ID,
		Name:   identity.Name,
		Email:  identity.Email,
		Role:   identity.Role,
		Active: identity.Active,
	}
}

// SessionResponse describes the current session without the token itself.
type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	SubjectID     string      `json:"subject_id,omitempty"`
	Name          string      `json:"name,omitempty"`
	Email         string      `json:"email,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

// NewSessionResponse maps a session; nil yields an anonymous response.
func NewSessionResponse(session *domain.Session) SessionResponse {
	if session == nil {
		return SessionResponse{}
	}
	exp := session.ExpiresAt
	return SessionResponse{
		Authenticated: true,
		SubjectID:     session.SubjectID,
		Name:          session.Name,
		Email:         session.Email,
		Role:          session.Role,
		ExpiresAt:     &exp,
	}
}

// AuthResponse is returned by register and login. The token itself only
// travels in the session cookie.
type AuthResponse struct {
	Identity  IdentityResponse `json:"identity"`
	ExpiresAt time.Time        `json:"expires_at"`
	Redirect  string           `json:"redirect"`
}
