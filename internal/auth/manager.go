package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"productupdate.io/client/internal/apiclient"
	"productupdate.io/client/internal/core/domain"
	"productupdate.io/client/internal/core/ports"
)

// TokenOption is the option name the token record is persisted under,
// separate from the client settings.
const TokenOption = "product_update_client_token"

// loginPath is the server's login endpoint, relative to the configured base.
const loginPath = "wp-json/wp-product-update-server/v1/login"

// ErrMissingToken is returned when the server's login response omits a token.
var ErrMissingToken = errors.New("the update server did not return a token")

// Manager owns the token lifecycle: login, logout, authentication-state
// checks, and header injection for authorized calls.
type Manager struct {
	api   *apiclient.Client
	store ports.OptionStore

	mu    sync.Mutex
	token *domain.TokenRecord

	now func() time.Time
}

// NewManager creates an authentication manager over the given API client and
// option store.
func NewManager(api *apiclient.Client, store ports.OptionStore) *Manager {
	return &Manager{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

// IsAuthenticated reports whether a token is present and not expired. The
// state is derived, never stored: it is recomputed on every check.
func (m *Manager) IsAuthenticated() bool {
	return m.Token().ValidAt(m.now())
}

// Login exchanges credentials for a token and persists it, both as the token
// record and mirrored into the client settings so the API client's own
// header helper works too.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	payload := map[string]any{
		"username": username,
		"password": password,
		"site":     m.siteIdentity(),
	}

	response, err := m.api.Post(ctx, loginPath, payload, nil)
	if err != nil {
		return err
	}

	tokenValue, _ := response["token"].(string)
	if tokenValue == "" {
		return ErrMissingToken
	}

	record := domain.TokenRecord{
		Token:   tokenValue,
		Expires: epochField(response, "expires"),
	}
	if user, ok := response["user"].(map[string]any); ok {
		record.User = user
	}

	if err := m.store.Set(TokenOption, record); err != nil {
		return err
	}

	settings := m.api.Settings()
	settings.RememberToken = record.Token
	settings.TokenExpires = record.Expires
	if err := m.api.UpdateSettings(settings); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = &record
	m.mu.Unlock()

	return nil
}

// Logout deletes the token record and zeroes the mirrored settings fields.
func (m *Manager) Logout() error {
	if err := m.store.Delete(TokenOption); err != nil {
		return err
	}

	settings := m.api.Settings()
	settings.RememberToken = ""
	settings.TokenExpires = 0
	if err := m.api.UpdateSettings(settings); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()

	return nil
}

// Token returns the stored token record, lazily loaded. It never fails: a
// missing record comes back empty.
func (m *Manager) Token() domain.TokenRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil {
		var record domain.TokenRecord
		if _, err := m.store.Get(TokenOption, &record); err != nil {
			record = domain.TokenRecord{}
		}
		m.token = &record
	}

	return *m.token
}

// AuthorizedHeaders adds the bearer token to the given headers when one is
// present. Expiry is deliberately not checked here: IsAuthenticated is the
// local advisory gate, while an expired-but-present token is still attached
// and left for the server to reject.
func (m *Manager) AuthorizedHeaders(headers http.Header) http.Header {
	if headers == nil {
		headers = http.Header{}
	}

	token := m.Token()
	if token.Token == "" {
		return headers
	}

	headers.Set("Authorization", "Bearer "+token.Token)
	return headers
}

// siteIdentity is the value sent as the caller's own identity on login: the
// configured site URL, or the machine hostname when none is set.
func (m *Manager) siteIdentity() string {
	if site := m.api.Settings().SiteURL; site != "" {
		return site
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// epochField coerces a JSON number into epoch seconds, returning 0 when
// absent or malformed.
func epochField(response map[string]any, key string) int64 {
	switch value := response[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	default:
		return 0
	}
}
