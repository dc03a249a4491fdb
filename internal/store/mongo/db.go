// Package mongo implements the domain repositories on MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
	notificationsCollection = "notifications"
)

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Migrate creates the indexes the repositories rely on. It is idempotent.
// The unique participantKey index is what makes conversation creation
// race-free: two concurrent creates for one participant set cannot both win.
func Migrate(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		conversationsCollection: {
			{
				Keys:    bson.D{{Key: "participantKey", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{Keys: bson.D{{Key: "users", Value: 1}}},
			{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "sentAt", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("migrate %s: %w", coll, err)
		}
	}
	return nil
}

func toObjectIDs(ids []string) ([]bson.ObjectID, error) {
	res := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("object id %q: %w", id, err)
		}
		res = append(res, oid)
	}
	return res, nil
}

func toHex(ids []bson.ObjectID) []string {
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = id.Hex()
	}
	return res
}
