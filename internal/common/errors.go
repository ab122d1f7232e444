// Package common defines shared constants and sentinel errors used across
// coordinator and client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Storage errors.
	ErrorStoreAccess = errors.New("store access failure")

	// RPC dispatch errors.
	ErrorUnknownFunction  = errors.New("unknown function")
	ErrorInvalidArguments = errors.New("invalid arguments")
	ErrorInternalCall     = errors.New("internal error")

	// Configuration errors.
	ErrorUnsupportedDSN    = errors.New("unsupported store dsn")
	ErrorUnsupportedPolicy = errors.New("unsupported notify policy")
)
