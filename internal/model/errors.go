package model

import "errors"

// ErrNoLoader is returned by CacheProxy.Load on a miss when no Loader is configured.
var ErrNoLoader = errors.New("cache proxy has no loader")
