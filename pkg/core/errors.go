package core

import "errors"

var ErrEntityNotFound = errors.New("entity not found")

// ErrUnauthenticated is returned when an operation needs a signer but the session has none.
var ErrUnauthenticated = errors.New("wallet is not connected")
