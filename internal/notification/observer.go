package notification

import (
	"context"
	"reflect"
)

// Func is the callback an Observer invokes for each delivered notification.
type Func func(ctx context.Context, n Notification)

// Observer binds a callback to the context that owns it.
// Two observers are considered the same when their contexts are the same,
// whatever their callbacks are. The observer never owns its context.
type Observer struct {
	notify  Func
	context any
}

// NewObserver creates an Observer for fn owned by notifyContext.
func NewObserver(fn Func, notifyContext any) *Observer {
	return &Observer{
		notify:  fn,
		context: notifyContext,
	}
}

// NotifyContext returns the owning context.
func (o *Observer) NotifyContext() any {
	return o.context
}

// NotifyObserver invokes the callback with n. A nil callback is ignored.
func (o *Observer) NotifyObserver(ctx context.Context, n Notification) {
	if o.notify == nil {
		return
	}
	o.notify(ctx, n)
}

// CompareNotifyContext reports whether other is this observer's context.
func (o *Observer) CompareNotifyContext(other any) bool {
	return SameContext(o.context, other)
}

// SameContext compares two notify contexts by identity.
// Pointers, maps, slices, channels and funcs compare by address; other
// comparable values compare with ==. Values that cannot be compared are
// never equal, and the comparison never panics.
func SameContext(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}
