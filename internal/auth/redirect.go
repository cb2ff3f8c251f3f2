package auth

import (
	"net/url"
	"strings"
)

// RedirectParam is the query parameter carrying the post-login return path.
const RedirectParam = "redirect"

// LoginRedirect builds the login location that returns the user to target.
func LoginRedirect(loginPath, target string) string {
	if target == "" {
		return loginPath
	}
	return loginPath + "?" + url.Values{RedirectParam: {target}}.Encode()
}

// SafeRedirect accepts only same-origin relative paths and falls back otherwise.
func SafeRedirect(candidate, fallback string) string {
	if candidate == "" || !strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, "//") {
		return fallback
	}
	if strings.ContainsAny(candidate, "\\\r\n") {
		return fallback
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return candidate
}
