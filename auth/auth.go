// Package auth hashes passwords and issues the bearer tokens clients
// present on every authenticated request.
package auth

import "errors"

// ErrInvalidCredentials covers every authentication failure: unknown
// user, wrong password, bad signature, expired or malformed token.
var ErrInvalidCredentials = errors.New("invalid credentials")
