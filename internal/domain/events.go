package domain

// Names of the events pushed to connected clients.
const (
	EventConversationUpdate  = "conversationUpdate"
	EventNotificationsUpdate = "notificationsUpdate"
)

// NotificationChange is the kind carried by a notificationsUpdate event.
type NotificationChange string

const (
	NotificationAdded   NotificationChange = "add"
	NotificationRemoved NotificationChange = "remove"
)

// NotificationEvent is the payload of notificationsUpdate.
type NotificationEvent struct {
	Notification *PopulatedNotification `json:"notification"`
	Type         NotificationChange     `json:"type"`
}
