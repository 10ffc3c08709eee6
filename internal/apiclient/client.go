package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"productupdate.io/client/internal/core/domain"
	"productupdate.io/client/internal/core/ports"
)

// SettingsOption is the option name the client settings are persisted under.
const SettingsOption = "product_update_client_settings"

// requestTimeout bounds every request to the update server. There are no
// retries on any failure path.
const requestTimeout = 20 * time.Second

// Client handles HTTP communication with the product update server and owns
// the persisted client settings.
type Client struct {
	store      ports.OptionStore
	httpClient *http.Client

	mu       sync.Mutex
	settings *domain.Settings
}

// New creates an API client backed by the given option store.
func New(store ports.OptionStore) *Client {
	return &Client{
		store: store,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Settings returns the stored settings, lazily loaded with defaults filling
// any missing values.
func (c *Client) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	return *c.loadSettingsLocked()
}

// UpdateSettings replaces the persisted settings wholesale and refreshes the
// in-memory cache.
func (c *Client) UpdateSettings(settings domain.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(SettingsOption, settings); err != nil {
		return err
	}

	c.settings = &settings
	return nil
}

// APIBase returns the configured update server URL without a trailing slash,
// or the empty string when no server is configured.
func (c *Client) APIBase() string {
	return c.Settings().NormalizedAPIBase()
}

// Get performs a GET request against the update server. Extra headers merge
// over the defaults, caller winning on conflict.
func (c *Client) Get(ctx context.Context, path string, headers http.Header) (map[string]any, error) {
	url, err := c.buildURL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	applyHeaders(req, http.Header{"Accept": {"application/json"}}, headers)

	return c.do(req)
}

// Post performs a POST request with a JSON body against the update server.
func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header) (map[string]any, error) {
	url, err := c.buildURL(path)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	applyHeaders(req, http.Header{
		"Accept":       {"application/json"},
		"Content-Type": {"application/json"},
	}, headers)

	return c.do(req)
}

// WithTokenHeader adds the remembered token from settings as a bearer
// Authorization header. The authentication manager has its own equivalent
// over the token record; both exist because the token is stored in two
// places (see the settings mirror in auth.Manager.Login).
func (c *Client) WithTokenHeader(headers http.Header) http.Header {
	if headers == nil {
		headers = http.Header{}
	}

	settings := c.Settings()
	if settings.RememberToken == "" {
		return headers
	}

	headers.Set("Authorization", "Bearer "+settings.RememberToken)
	return headers
}

func (c *Client) loadSettingsLocked() *domain.Settings {
	if c.settings != nil {
		return c.settings
	}

	settings := domain.DefaultSettings()
	// Missing keys keep their defaults; a missing option leaves all of them.
	if _, err := c.store.Get(SettingsOption, &settings); err != nil {
		settings = domain.DefaultSettings()
	}

	c.settings = &settings
	return c.settings
}

// buildURL joins the configured base with the given path, trimming leading
// slashes from the path.
func (c *Client) buildURL(path string) (string, error) {
	base := c.APIBase()
	if base == "" {
		return "", ErrMissingBaseURL
	}

	return base + "/" + strings.TrimLeft(path, "/"), nil
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var data map[string]any
	decodeErr := json.NewDecoder(resp.Body).Decode(&data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "unexpected response from the update server"
		if decodeErr == nil {
			if serverMessage, ok := data["message"].(string); ok && serverMessage != "" {
				message = serverMessage
			}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return nil, &ParseError{Err: decodeErr}
	}

	return data, nil
}

// applyHeaders sets the defaults on the request and then the extras, so the
// caller's headers win on conflict.
func applyHeaders(req *http.Request, defaults, extra http.Header) {
	for key, values := range defaults {
		req.Header[key] = values
	}
	for key, values := range extra {
		req.Header[http.CanonicalHeaderKey(key)] = values
	}
}
