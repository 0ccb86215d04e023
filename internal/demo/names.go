// Package demo is a small application built on the framework: a proxy
// holding greetings, a mediator printing them, and a macro startup command
// wiring both into a core.
package demo

// Notification names.
const (
	Startup        = "demo.startup"
	Greet          = "demo.greet"
	Greeted        = "demo.greeted"
	HistoryCleared = "demo.history_cleared"
	Shutdown       = "demo.shutdown"
)

// Registration names.
const (
	GreetingProxyName   = "GreetingProxy"
	DisplayNameProxy    = "DisplayNameProxy"
	ConsoleMediatorName = "ConsoleMediator"
)
