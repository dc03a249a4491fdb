package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"runhub/internal/domain"
)

type userDoc struct {
	ID        bson.ObjectID   `bson:"_id"`
	Username  string          `bson:"username"`
	Deleted   bool            `bson:"deleted"`
	Following []bson.ObjectID `bson:"following"`
	Followers []bson.ObjectID `bson:"followers"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Deleted:   d.Deleted,
		Following: toHex(d.Following),
		Followers: toHex(d.Followers),
	}
}

type conversationDoc struct {
	ID             bson.ObjectID   `bson:"_id"`
	Users          []bson.ObjectID `bson:"users"`
	ParticipantKey string          `bson:"participantKey,omitempty"`
	Messages       []bson.ObjectID `bson:"messages"`
	CreatedAt      time.Time       `bson:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt"`
}

func (d *conversationDoc) toDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:             d.ID.Hex(),
		Users:          toHex(d.Users),
		ParticipantKey: d.ParticipantKey,
		Messages:       toHex(d.Messages),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type messageDoc struct {
	ID             bson.ObjectID   `bson:"_id"`
	MessageContent string          `bson:"messageContent"`
	Sender         bson.ObjectID   `bson:"sender"`
	SentAt         time.Time       `bson:"sentAt"`
	ReadBy         []bson.ObjectID `bson:"readBy"`
	ConversationID bson.ObjectID   `bson:"conversationId"`
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:             d.ID.Hex(),
		MessageContent: d.MessageContent,
		Sender:         d.Sender.Hex(),
		SentAt:         d.SentAt,
		ReadBy:         toHex(d.ReadBy),
		ConversationID: d.ConversationID.Hex(),
	}
}

type notificationDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	User      string        `bson:"user"`
	Message   bson.ObjectID `bson:"message"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d *notificationDoc) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        d.ID.Hex(),
		User:      d.User,
		Message:   d.Message.Hex(),
		CreatedAt: d.CreatedAt,
	}
}
