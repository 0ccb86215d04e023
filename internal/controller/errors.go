package controller

import "errors"

// ErrCommandPanicked wraps a panic recovered by RecoveryMiddleware.
var ErrCommandPanicked = errors.New("command panicked")

// ErrNilFactory is logged when RegisterCommand is called without a factory.
var ErrNilFactory = errors.New("command factory is nil")
