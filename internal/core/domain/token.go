package domain

import "time"

// TokenRecord is the credential proof issued by the update server. A zero
// Expires means the token never expires. User carries opaque attributes
// returned by the server; the display name lives under "name".
type TokenRecord struct {
	Token   string         `json:"token"`
	Expires int64          `json:"expires"`
	User    map[string]any `json:"user,omitempty"`
}

// IsEmpty reports whether no token has been stored.
func (t TokenRecord) IsEmpty() bool {
	return t.Token == ""
}

// ValidAt reports whether the token is present and not expired at the given
// instant. This is the single source of truth for authentication state;
// nothing stores the state directly.
func (t TokenRecord) ValidAt(now time.Time) bool {
	if t.Token == "" {
		return false
	}
	if t.Expires != 0 && now.Unix() >= t.Expires {
		return false
	}
	return true
}

// DisplayName returns the authenticated user's display name, if the server
// supplied one.
func (t TokenRecord) DisplayName() string {
	if t.User == nil {
		return ""
	}
	name, _ := t.User["name"].(string)
	return name
}
