package facade

// MediatorInfo describes a registered mediator.
type MediatorInfo struct {
	Name      string   `yaml:"name" json:"name"`
	Interests []string `yaml:"interests,omitempty" json:"interests,omitempty"`
}

// Inventory is a point-in-time listing of a core's registries.
type Inventory struct {
	Key       string         `yaml:"key" json:"key"`
	Proxies   []string       `yaml:"proxies" json:"proxies"`
	Mediators []MediatorInfo `yaml:"mediators" json:"mediators"`
	Commands  []string       `yaml:"commands" json:"commands"`
	Observers map[string]int `yaml:"observers" json:"observers"`
	Executed  int64          `yaml:"commands_executed" json:"commands_executed"`
	Failed    int64          `yaml:"commands_failed" json:"commands_failed"`
}

// Snapshot lists the core's proxies and mediators in registration order,
// its commands sorted, and the observer count of every notification name.
func (f *Facade) Snapshot() Inventory {
	inv := Inventory{
		Key:       f.key,
		Proxies:   f.model.ProxyNames(),
		Mediators: make([]MediatorInfo, 0),
		Commands:  f.controller.CommandNames(),
		Observers: make(map[string]int),
		Executed:  f.controller.ExecutedCount(),
		Failed:    f.controller.ErrorCount(),
	}
	for _, name := range f.view.MediatorNames() {
		inv.Mediators = append(inv.Mediators, MediatorInfo{Name: name, Interests: f.view.Interests(name)})
	}
	for _, name := range f.view.ObserverNames() {
		inv.Observers[name] = f.view.ObserverCount(name)
	}
	return inv
}
