// Package http implements the HTTP transport layer: request decoding,
// payload validation and file download responses. All error responses share
// the envelope defined in internal/errors.
package http
