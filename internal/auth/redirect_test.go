package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login", LoginRedirect("/login", ""))
	assert.Equal(t, "/login?redirect=%2Faccount", LoginRedirect("/login", "/account"))
	assert.Equal(t, "/login?redirect=%2Fadmin%3Fpage%3D2", LoginRedirect("/login", "/admin?page=2"))
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"/account":               "/account",
		"/admin/staff?page=2":    "/admin/staff?page=2",
		"":                       "/",
		"account":                "/",
		"//evil.example.com":     "/",
		"https://evil.example":   "/",
		"/\\evil.example.com":    "/",
		"/ok\r\nSet-Cookie: a=b": "/",
	}
	for candidate, want := range tests {
		assert.Equal(t, want, SafeRedirect(candidate, "/"), "candidate %q", candidate)
	}
}
