package main

import "errors"

// Core error taxonomy. Handlers map these to HTTP status codes; everything
// else surfaces as an internal error.
var (
	errUnauthenticated   = errors.New("unauthenticated")
	errNotFound          = errors.New("not found")
	errInvalidArgument   = errors.New("invalid argument")
	errInactive          = errors.New("rule is inactive")
	errAlreadyGenerated  = errors.New("already generated recently")
	errInsufficientFunds = errors.New("insufficient funds")
)
