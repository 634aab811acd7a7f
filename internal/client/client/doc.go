// Package client contains the client-side building blocks of the fact-share
// CLI: bootstrap of the local SQLite store (InitDatabase, RunMigrations) and
// an HTTP client for the alias registry (HTTPAliasClient).
//
// Registry failures are reported with the sentinel errors of package common
// (ErrorValidation, ErrorNotFound, ErrorUnavailable) so callers can branch on
// them with errors.Is.
package client
