// Package server provides the runtime pieces shared by the long running
// commands of toodledo.
//
// ServerContext caches one Toodledo client per account for the MCP server.
// Clients are created lazily by a ClientFactory, so an account is only
// authorized once a tool actually uses it.
//
// HealthChecker tracks the outcome of the watch polling loop and serves
// liveness and readiness endpoints. MetricsServer exposes Prometheus metrics
// and, when given a HealthChecker, the health endpoints on the same address.
package server
