package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productupdate.io/client/internal/apiclient"
	"productupdate.io/client/internal/core/domain"
	"productupdate.io/client/internal/infrastructure/storage"
)

func newTestManager(t *testing.T, base string) (*Manager, *apiclient.Client, *storage.MemoryOptionStore) {
	t.Helper()

	store := storage.NewMemoryOptionStore()
	api := apiclient.New(store)
	require.NoError(t, api.UpdateSettings(domain.Settings{APIBase: base, SiteURL: "https://shop.example.com"}))

	return NewManager(api, store), api, store
}

func TestManager_Login_RoundTrip(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp-product-update-server/v1/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Write([]byte(`{"token": "T", "expires": 1900000000, "user": {"name": "N"}}`))
	}))
	defer server.Close()

	manager, api, _ := newTestManager(t, server.URL)

	require.NoError(t, manager.Login(context.Background(), "u", "p"))

	assert.Equal(t, map[string]any{
		"username": "u",
		"password": "p",
		"site":     "https://shop.example.com",
	}, received)

	token := manager.Token()
	assert.Equal(t, "T", token.Token)
	assert.Equal(t, int64(1_900_000_000), token.Expires)
	assert.Equal(t, "N", token.DisplayName())

	// The token is mirrored into settings for the API client's own helper.
	settings := api.Settings()
	assert.Equal(t, "T", settings.RememberToken)
	assert.Equal(t, int64(1_900_000_000), settings.TokenExpires)
	assert.Equal(t, "Bearer T", api.WithTokenHeader(nil).Get("Authorization"))

	assert.True(t, manager.IsAuthenticated())
}

func TestManager_Login_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": {"name": "N"}}`))
	}))
	defer server.Close()

	manager, _, _ := newTestManager(t, server.URL)

	err := manager.Login(context.Background(), "u", "p")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, manager.IsAuthenticated())
}

func TestManager_Login_APIErrorPropagatesVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "bad credentials"}`))
	}))
	defer server.Close()

	manager, _, _ := newTestManager(t, server.URL)

	err := manager.Login(context.Background(), "u", "wrong")

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "bad credentials", apiErr.Message)
}

func TestManager_Login_MissingBaseURL(t *testing.T) {
	store := storage.NewMemoryOptionStore()
	manager := NewManager(apiclient.New(store), store)

	err := manager.Login(context.Background(), "u", "p")
	assert.ErrorIs(t, err, apiclient.ErrMissingBaseURL)
}

func TestManager_Logout_ClearsEverything(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "T"}`))
	}))
	defer server.Close()

	manager, api, store := newTestManager(t, server.URL)
	require.NoError(t, manager.Login(context.Background(), "u", "p"))
	require.True(t, manager.IsAuthenticated())

	require.NoError(t, manager.Logout())

	assert.True(t, manager.Token().IsEmpty())
	assert.False(t, manager.IsAuthenticated())

	settings := api.Settings()
	assert.Empty(t, settings.RememberToken)
	assert.Zero(t, settings.TokenExpires)

	var record domain.TokenRecord
	found, err := store.Get(TokenOption, &record)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestManager_Token_EmptyWhenAbsent(t *testing.T) {
	manager, _, _ := newTestManager(t, "https://updates.example.com")

	token := manager.Token()
	assert.True(t, token.IsEmpty())
	assert.Zero(t, token.Expires)
}

func TestManager_IsAuthenticated_ChecksExpiry(t *testing.T) {
	manager, _, store := newTestManager(t, "https://updates.example.com")

	now := time.Unix(1_700_000_000, 0)
	manager.now = func() time.Time { return now }

	tests := []struct {
		name   string
		record domain.TokenRecord
		want   bool
	}{
		{"no_token", domain.TokenRecord{}, false},
		{"token_never_expires", domain.TokenRecord{Token: "T"}, true},
		{"token_still_valid", domain.TokenRecord{Token: "T", Expires: now.Unix() + 60}, true},
		{"token_expired", domain.TokenRecord{Token: "T", Expires: now.Unix() - 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Set(TokenOption, tt.record))
			manager.mu.Lock()
			manager.token = nil // drop the in-memory cache
			manager.mu.Unlock()

			assert.Equal(t, tt.want, manager.IsAuthenticated())
		})
	}
}

// AuthorizedHeaders attaches a present token even when it is expired; only
// IsAuthenticated consults expiry. The server is the enforcement point.
func TestManager_AuthorizedHeaders_IgnoresExpiry(t *testing.T) {
	manager, _, store := newTestManager(t, "https://updates.example.com")
	require.NoError(t, store.Set(TokenOption, domain.TokenRecord{
		Token:   "expired-token",
		Expires: time.Now().Unix() - 3600,
	}))

	assert.False(t, manager.IsAuthenticated())

	headers := manager.AuthorizedHeaders(nil)
	assert.Equal(t, "Bearer expired-token", headers.Get("Authorization"))
}

func TestManager_AuthorizedHeaders_PassThroughWithoutToken(t *testing.T) {
	manager, _, _ := newTestManager(t, "https://updates.example.com")

	headers := http.Header{}
	headers.Set("Accept", "application/json")

	result := manager.AuthorizedHeaders(headers)
	assert.Empty(t, result.Get("Authorization"))
	assert.Equal(t, "application/json", result.Get("Accept"))
}
