package errors

import "errors"

// ----------------- cache ------------------
var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// ----------------- credentials ------------------
var (
	ErrNoCredentials  = errors.New("credentials: no stored token pair")
	ErrSessionInvalid = errors.New("credentials: session invalid, re-login required")
)
