package update

import (
	"context"
	"net/http"

	"productupdate.io/client/internal/core/domain"
)

// ActionPluginInformation is the only information-lookup action this client
// responds to.
const ActionPluginInformation = "plugin_information"

// InfoRequest is a host request for rich package information.
type InfoRequest struct {
	Action string
	Slug   string
}

// Handler signatures for the pipeline's named extension points. Each point
// is a chainable filter: handlers run in registration order, each receiving
// the previous handler's result.
type (
	// UpdateCheckHandler may add entries to the check's response map.
	UpdateCheckHandler func(ctx context.Context, check *domain.UpdateCheck)

	// PackageInfoHandler returns package information for a lookup request,
	// or the prior result unchanged.
	PackageInfoHandler func(ctx context.Context, result map[string]any, req InfoRequest) map[string]any

	// DownloadGuardHandler decides whether a package download may proceed.
	// A nil return allows it.
	DownloadGuardHandler func(packageURL string) error

	// AutoUpdateHandler decides whether an item may update automatically.
	AutoUpdateHandler func(allowed bool, item *domain.UpdateDescriptor) bool

	// RequestAuthHandler may amend the headers of an outgoing download
	// request.
	RequestAuthHandler func(headers http.Header, url string) http.Header
)

// Pipeline is the explicit replacement for the host platform's dynamic
// hook table: components register typed handlers against named extension
// points, and the host collaborator invokes them directly.
type Pipeline struct {
	updateCheck   []UpdateCheckHandler
	packageInfo   []PackageInfoHandler
	downloadGuard []DownloadGuardHandler
	autoUpdate    []AutoUpdateHandler
	requestAuth   []RequestAuthHandler
}

// NewPipeline creates an empty pipeline. Every Run method passes the host's
// state through untouched until handlers are registered.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// OnUpdateCheck registers a handler for the update-check point.
func (p *Pipeline) OnUpdateCheck(h UpdateCheckHandler) {
	p.updateCheck = append(p.updateCheck, h)
}

// OnPackageInfo registers a handler for the package-info-lookup point.
func (p *Pipeline) OnPackageInfo(h PackageInfoHandler) {
	p.packageInfo = append(p.packageInfo, h)
}

// OnDownloadGuard registers a handler for the download-guard point.
func (p *Pipeline) OnDownloadGuard(h DownloadGuardHandler) {
	p.downloadGuard = append(p.downloadGuard, h)
}

// OnAutoUpdate registers a handler for the auto-update-decision point.
func (p *Pipeline) OnAutoUpdate(h AutoUpdateHandler) {
	p.autoUpdate = append(p.autoUpdate, h)
}

// OnRequestAuth registers a handler for the request-authorization point.
func (p *Pipeline) OnRequestAuth(h RequestAuthHandler) {
	p.requestAuth = append(p.requestAuth, h)
}

// RunUpdateCheck invokes the update-check handlers over the host's check
// state.
func (p *Pipeline) RunUpdateCheck(ctx context.Context, check *domain.UpdateCheck) {
	for _, h := range p.updateCheck {
		h(ctx, check)
	}
}

// RunPackageInfo invokes the package-info-lookup handlers.
func (p *Pipeline) RunPackageInfo(ctx context.Context, result map[string]any, req InfoRequest) map[string]any {
	for _, h := range p.packageInfo {
		result = h(ctx, result, req)
	}
	return result
}

// RunDownloadGuard invokes the download-guard handlers. The first error
// blocks the download.
func (p *Pipeline) RunDownloadGuard(packageURL string) error {
	for _, h := range p.downloadGuard {
		if err := h(packageURL); err != nil {
			return err
		}
	}
	return nil
}

// RunAutoUpdate invokes the auto-update-decision handlers.
func (p *Pipeline) RunAutoUpdate(allowed bool, item *domain.UpdateDescriptor) bool {
	for _, h := range p.autoUpdate {
		allowed = h(allowed, item)
	}
	return allowed
}

// RunRequestAuth invokes the request-authorization handlers over the headers
// of an outgoing download request.
func (p *Pipeline) RunRequestAuth(headers http.Header, url string) http.Header {
	for _, h := range p.requestAuth {
		headers = h(headers, url)
	}
	return headers
}
