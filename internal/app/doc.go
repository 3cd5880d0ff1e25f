// Package app wires the application together: configuration, logging,
// services, the middleware chain and the HTTP server with graceful shutdown.
package app
