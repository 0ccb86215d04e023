package demo

import "github.com/zjrosen/mvc/internal/notification"

func notificationFor(body any) notification.Notification {
	return notification.New(Greet, body, "")
}
