// Package transport holds the HTTP plumbing shared by the API and the
// server-rendered pages: the middleware chain (panic recovery, request
// IDs, access logging), JSON encoding helpers and the mapping from
// api.APIError types to HTTP status codes.
//
// Routing lives in the http subpackage, which uses Go 1.22+ ServeMux
// patterns such as "PATCH /api/v1/projects/{id}".
package transport
