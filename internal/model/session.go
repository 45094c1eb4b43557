package model

import "time"

// Theme is the display mode persisted per browser.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Opposite returns the other theme; anything unknown toggles to dark.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Session is the portal's per-browser state, replacing what the browser
// client kept in local storage.
//
// Fields:
//  ID        – raw session id carried in the cookie (only its hash is stored).
//  Token     – remote bearer token, empty when logged out.
//  Theme     – display mode; empty until the browser picks one.
//  CreatedAt – creation time.
//  ExpiresAt – hard expiry after which the session is discarded.
type Session struct {
	ID        string
	Token     string
	Theme     Theme
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether a bearer token is present.
func (s *Session) Authenticated() bool { return s != nil && s.Token != "" }
