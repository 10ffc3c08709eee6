package update

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"productupdate.io/client/internal/apiclient"
	"productupdate.io/client/internal/auth"
	"productupdate.io/client/internal/core/domain"
)

// ErrNotAuthenticated blocks package downloads from the configured server
// when the user is not logged in.
var ErrNotAuthenticated = errors.New("please log in to the update service before installing updates")

// Server endpoints, relative to the configured base.
const (
	checkUpdatesPath = "check-updates"
	packageInfoPath  = "plugin-information"
)

// Manager integrates with the host's update pipeline: it injects available
// updates fetched from the server, supplies package information, and gates
// package downloads behind authentication.
type Manager struct {
	auth   *auth.Manager
	api    *apiclient.Client
	logger *log.Logger

	// approvedURL is the single-slot handoff between the download guard and
	// the request-authorization step: the guard remembers the one URL it
	// approved, and authorization consumes it exactly once.
	mu          sync.Mutex
	approvedURL string
}

// NewManager creates an update manager over the given collaborators.
func NewManager(authManager *auth.Manager, api *apiclient.Client, logger *log.Logger) *Manager {
	return &Manager{
		auth:   authManager,
		api:    api,
		logger: logger,
	}
}

// Register attaches the manager's handlers to the pipeline's five extension
// points. The guard must run before request authorization within one
// download attempt; the pipeline's invocation order guarantees that.
func (m *Manager) Register(p *Pipeline) {
	p.OnUpdateCheck(m.InjectUpdates)
	p.OnPackageInfo(m.PackageInformation)
	p.OnDownloadGuard(m.GuardDownload)
	p.OnAutoUpdate(m.DecideAutoUpdate)
	p.OnRequestAuth(m.AuthorizeRequest)
}

// InjectUpdates asks the server which of the checked packages have updates
// and merges the answers into the check's response map. Every failure is
// soft: the host's state is left exactly as it was, so a server outage
// degrades to "no updates currently known".
func (m *Manager) InjectUpdates(ctx context.Context, check *domain.UpdateCheck) {
	if !m.auth.IsAuthenticated() {
		return
	}
	if check == nil || len(check.Checked) == 0 {
		return
	}

	payload := make([]map[string]string, 0, len(check.Checked))
	for pluginFile, version := range check.Checked {
		payload = append(payload, map[string]string{
			"plugin_file": pluginFile,
			"version":     version,
		})
	}

	response, err := m.api.Post(ctx, checkUpdatesPath, map[string]any{"plugins": payload}, m.auth.AuthorizedHeaders(nil))
	if err != nil {
		m.logger.Printf("update check failed: %v", err)
		return
	}

	updates, ok := response["updates"].([]any)
	if !ok {
		return
	}

	if check.Response == nil {
		check.Response = make(map[string]*domain.UpdateDescriptor)
	}

	for _, raw := range updates {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		// Malformed entries are skipped, not fatal to the batch.
		descriptor, ok := domain.DescriptorFromEntry(entry)
		if !ok {
			continue
		}

		check.Response[descriptor.PluginFile] = descriptor
	}
}

// PackageInformation supplies rich package detail for the host's information
// lookups. It only acts on the plugin_information action with a slug while
// authenticated; on any error the prior result passes through unchanged.
func (m *Manager) PackageInformation(ctx context.Context, result map[string]any, req InfoRequest) map[string]any {
	if req.Action != ActionPluginInformation {
		return result
	}
	if !m.auth.IsAuthenticated() {
		return result
	}
	if req.Slug == "" {
		return result
	}

	response, err := m.api.Post(ctx, packageInfoPath, map[string]any{"slug": req.Slug}, m.auth.AuthorizedHeaders(nil))
	if err != nil {
		m.logger.Printf("package information lookup failed: %v", err)
		return result
	}

	return response
}

// GuardDownload blocks downloads of our packages when unauthenticated. A
// permitted download's exact URL is remembered so AuthorizeRequest can
// attach credentials to it.
func (m *Manager) GuardDownload(packageURL string) error {
	m.mu.Lock()
	m.approvedURL = ""
	m.mu.Unlock()

	base := m.api.APIBase()
	if base == "" || !strings.HasPrefix(packageURL, base) {
		return nil
	}

	if !m.auth.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	m.mu.Lock()
	m.approvedURL = packageURL
	m.mu.Unlock()

	return nil
}

// DecideAutoUpdate forces automatic updates off for our packages when the
// user is not logged in; anything else keeps the host's decision.
func (m *Manager) DecideAutoUpdate(allowed bool, item *domain.UpdateDescriptor) bool {
	base := m.api.APIBase()
	if base == "" {
		return allowed
	}

	if item == nil || item.Package == "" || !strings.HasPrefix(item.Package, base) {
		return allowed
	}

	if !m.auth.IsAuthenticated() {
		return false
	}

	return allowed
}

// AuthorizeRequest attaches authorized headers to the one download request
// the guard just approved, then clears the approval. The one-shot consume
// keeps the token off unrelated requests, including redirects to another
// host.
func (m *Manager) AuthorizeRequest(headers http.Header, url string) http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.approvedURL == "" || url != m.approvedURL {
		return headers
	}

	headers = m.auth.AuthorizedHeaders(headers)
	m.approvedURL = ""

	return headers
}
