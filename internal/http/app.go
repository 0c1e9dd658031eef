// Package http holds the composition types the router is built from.
package http

import (
	"context"

	"leadqualify_backend/internal/events"
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/logger"
)

// RouterConfig is what the router reads from configuration: listen and
// CORS settings plus the JWT secret.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by a cmd main and handed to router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health may be nil, in which case readiness always passes.
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
