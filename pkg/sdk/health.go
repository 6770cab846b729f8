package sdk

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health probes the store and every configured provider that can check itself.
// A failing provider yields "degraded"; the store status is available via StoreUp.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for component, res := range report.Checks {
		h.Checks[component] = string(res)
	}
	return h
}

// providerChecker returns v as a health checker, or nil when v cannot check itself.
func providerChecker(v any) healthuc.ProviderChecker {
	if hc, ok := v.(domain.HealthChecker); ok && hc != nil {
		return hc
	}
	return nil
}
