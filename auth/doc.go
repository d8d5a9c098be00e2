// Package auth verifies credentials, mints and decodes session tokens, and
// decides whether a session may perform an operation.
package auth
