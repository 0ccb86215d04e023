package model

// Proxy is a named data holder registered with the Model.
type Proxy interface {
	// Name returns the unique registration name.
	Name() string
	// Data returns the held data.
	Data() any
	// SetData replaces the held data.
	SetData(data any)
	// OnRegister is called after the proxy is stored.
	OnRegister()
	// OnRemove is called after the proxy is removed.
	OnRemove()
}

// DefaultProxyName is used when a BaseProxy is created without a name.
const DefaultProxyName = "Proxy"

// BaseProxy stores a name and a data value and has no-op lifecycle hooks.
type BaseProxy struct {
	name string
	data any
}

// NewBaseProxy creates a BaseProxy. An empty name becomes DefaultProxyName.
func NewBaseProxy(name string, data any) BaseProxy {
	if name == "" {
		name = DefaultProxyName
	}
	return BaseProxy{name: name, data: data}
}

// Name returns the registration name.
func (p *BaseProxy) Name() string {
	return p.name
}

// Data returns the held data.
func (p *BaseProxy) Data() any {
	return p.data
}

// SetData replaces the held data.
func (p *BaseProxy) SetData(data any) {
	p.data = data
}

// OnRegister does nothing.
func (p *BaseProxy) OnRegister() {}

// OnRemove does nothing.
func (p *BaseProxy) OnRemove() {}
