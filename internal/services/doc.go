// Package services contains the business logic orchestration layer. It sits
// between the HTTP transport and the report domain package: handlers decode
// and validate payloads, services own the generation flow and the lifecycle
// of produced files.
package services
