package controller

import "time"

// CommandLogEvent is published on the event bus after each command execution.
type CommandLogEvent struct {
	// Key is the multiton key of the core that executed the command.
	Key string
	// Notification is the name of the triggering notification.
	Notification string
	// NotificationID correlates with view and facade log lines.
	NotificationID string
	// Command is the CommandName of the executed command.
	Command string
	// Success is false when the command returned an error.
	Success bool
	// Error holds the returned error (nil on success).
	Error error
	// Duration is how long Execute took, middleware included.
	Duration time.Duration
	// Timestamp is when execution finished.
	Timestamp time.Time
}
