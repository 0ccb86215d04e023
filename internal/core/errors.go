package core

import "errors"

// ErrDuplicateKey is returned by Registry.Create when the key is in use.
var ErrDuplicateKey = errors.New("core already exists for key")

// ErrKeyClosing is returned by Registry.Create while the core for the key is
// still being torn down.
var ErrKeyClosing = errors.New("core for key is being removed")
