// Package api defines the core domain types for the Nordweb portal.
//
// This package provides the data types shared by the storage adapters, the
// portal services and the HTTP transport: profiles and roles, projects with
// their phases, updates, metrics and documents, and contact messages. It
// also carries the structured error type, ID generation, input validation
// and the project status state machine.
//
// The package has no external dependencies and performs no I/O.
//
// Core types:
//   - [Role]: access tier of an account (user, admin, owner)
//   - [Project]: a customer engagement tracked through [Phase] records
//   - [Update], [Metric], [Document]: per-project activity, measurements and files
//   - [ContactMessage]: a submission from the public contact form
//   - [APIError]: structured error with type, code, param and message
package api
