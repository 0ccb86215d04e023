package facade

import "errors"

// ErrNotifierNotInitialized is logged when a Notifier sends before it has been
// bound to a Facade.
var ErrNotifierNotInitialized = errors.New("notifier not initialized")
