// Package backend provides the MomPick API server.
//
// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:
//
//   - internal/handlers: HTTP request handlers for all API endpoints
//   - internal/models: Data models and database schemas
//   - internal/auth: Authentication and authorization services
//   - internal/facility: Upstream facility API client and fetcher
//   - internal/detailcache: S3-backed facility detail cache
//   - internal/storage: File storage (S3) operations
//   - internal/database: Database connection and migrations
//   - internal/cache: Redis client helpers
//   - internal/push: FCM push delivery
//   - internal/notify: Notification creation and fan-out
//   - internal/middleware: HTTP middleware (auth, tracing, metrics, request IDs)
//   - internal/telemetry: OpenTelemetry tracer setup
//   - internal/logger: Structured logging setup
//   - internal/errors: API error types and HTTP mapping
//   - internal/metrics: Prometheus collectors
//
// See the individual package documentation for detailed API reference.
package backend
