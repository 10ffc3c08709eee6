package update

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"productupdate.io/client/internal/core/domain"
)

func TestPipeline_EmptyPassesStateThrough(t *testing.T) {
	p := NewPipeline()

	check := domain.NewUpdateCheck(map[string]string{"a/a.php": "1.0"})
	p.RunUpdateCheck(context.Background(), check)
	assert.Empty(t, check.Response)

	prior := map[string]any{"prior": true}
	assert.Equal(t, prior, p.RunPackageInfo(context.Background(), prior, InfoRequest{}))

	assert.NoError(t, p.RunDownloadGuard("https://x/pkg.zip"))
	assert.True(t, p.RunAutoUpdate(true, nil))
	assert.False(t, p.RunAutoUpdate(false, nil))

	headers := http.Header{"X-A": []string{"1"}}
	assert.Equal(t, headers, p.RunRequestAuth(headers, "https://x/pkg.zip"))
}

func TestPipeline_HandlersChainInRegistrationOrder(t *testing.T) {
	p := NewPipeline()
	p.OnPackageInfo(func(ctx context.Context, result map[string]any, req InfoRequest) map[string]any {
		return map[string]any{"first": true}
	})
	p.OnPackageInfo(func(ctx context.Context, result map[string]any, req InfoRequest) map[string]any {
		assert.Equal(t, map[string]any{"first": true}, result)
		return map[string]any{"second": true}
	})

	result := p.RunPackageInfo(context.Background(), nil, InfoRequest{})
	assert.Equal(t, map[string]any{"second": true}, result)
}

func TestPipeline_FirstGuardErrorBlocks(t *testing.T) {
	blocked := errors.New("blocked")
	reached := false

	p := NewPipeline()
	p.OnDownloadGuard(func(packageURL string) error { return blocked })
	p.OnDownloadGuard(func(packageURL string) error {
		reached = true
		return nil
	})

	assert.ErrorIs(t, p.RunDownloadGuard("https://x/pkg.zip"), blocked)
	assert.False(t, reached)
}

func TestPipeline_AutoUpdateDecisionsFold(t *testing.T) {
	p := NewPipeline()
	p.OnAutoUpdate(func(allowed bool, item *domain.UpdateDescriptor) bool { return true })
	p.OnAutoUpdate(func(allowed bool, item *domain.UpdateDescriptor) bool { return allowed && item != nil })

	assert.False(t, p.RunAutoUpdate(false, nil))
	assert.True(t, p.RunAutoUpdate(false, &domain.UpdateDescriptor{}))
}
