package domain

import "strings"

// Settings is the persisted configuration for the update client. A single
// instance exists per installation; it is created with defaults on first
// access and reset to empty values rather than deleted.
type Settings struct {
	APIBase       string `json:"api_base"`
	RememberToken string `json:"remember_token"`
	TokenExpires  int64  `json:"token_expires"`
	SiteURL       string `json:"site_url,omitempty"`
}

// DefaultSettings returns the settings used before the site owner has
// configured anything.
func DefaultSettings() Settings {
	return Settings{
		APIBase:       "",
		RememberToken: "",
		TokenExpires:  0,
	}
}

// NormalizedAPIBase returns the configured server URL without a trailing
// slash, or the empty string when no server is configured.
func (s Settings) NormalizedAPIBase() string {
	return strings.TrimRight(s.APIBase, "/")
}
