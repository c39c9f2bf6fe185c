// Package api exposes the informational HTTP endpoints (root, health,
// configuration and component) behind request ID, rate limit, logging,
// recovery and CORS middleware.
package api
