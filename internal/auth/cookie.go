package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// CookieBinding transports session tokens in a site-wide HTTP-only cookie.
type CookieBinding struct {
	maxAge      time.Duration
	forceSecure bool
}

// NewCookieBinding builds a binding whose cookies live for maxAge. When
// forceSecure is false the Secure flag follows the request's transport.
func NewCookieBinding(maxAge time.Duration, forceSecure bool) *CookieBinding {
	return &CookieBinding{maxAge: maxAge, forceSecure: forceSecure}
}

// Attach sets the session cookie on the response.
func (b *CookieBinding) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(b.maxAge.Seconds()),
		Secure:   b.secure(c),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Read returns the session token, if the request carries one.
func (b *CookieBinding) Read(c *fiber.Ctx) (string, bool) {
	token := c.Cookies(SessionCookieName)
	return token, token != ""
}

// Clear overwrites the session cookie with an already expired, empty value.
func (b *CookieBinding) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   b.secure(c),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// secure honors TLS and X-Forwarded-Proto through fiber's protocol detection.
func (b *CookieBinding) secure(c *fiber.Ctx) bool {
	return b.forceSecure || c.Secure()
}
