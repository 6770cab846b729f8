package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search keeps answering in lexical-only mode.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase   = "database"
	ComponentEmbedding  = "embedding"
	ComponentGeneration = "generation"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	checks  map[string]ProviderChecker
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Service. embedding and generation can be nil and are then not reported.
func New(db DBPinger, embedding, generation ProviderChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	checks := map[string]ProviderChecker{}
	if embedding != nil {
		checks[ComponentEmbedding] = embedding
	}
	if generation != nil {
		checks[ComponentGeneration] = generation
	}
	return &Service{db: db, checks: checks, timeout: defaultCheckTimeout, logger: logger}
}

// Check runs all component checks concurrently, each bounded by its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(s.checks)+1)
	)
	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		res := CheckOK
		if err := fn(cctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			res = CheckError
		}
		mu.Lock()
		results[name] = res
		mu.Unlock()
	}

	wg.Add(1 + len(s.checks))
	go run(ComponentDatabase, s.db.Ping)
	for name, c := range s.checks {
		go run(name, c.HealthCheck)
	}
	wg.Wait()

	status := Healthy
	for _, v := range results {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: results}
}
