// Package auth provides pluggable authentication and role-based access for
// the Nordweb portal.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). When every authenticator abstains the
// request continues anonymously, so the public site renders without a
// session.
//
// Auth is implemented as HTTP middleware. Middleware attaches the identity
// and re-reads the caller's role from the profile store on every request;
// RequireRole gates individual routes.
package auth
