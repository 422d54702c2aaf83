package ports

import "context"

// HealthChecker reports the health of an external dependency backing the
// vault service (journal store, rate-limit store).
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "redis").
	Name() string
}
