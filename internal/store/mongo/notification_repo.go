package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"runhub/internal/domain"
)

type NotificationRepo struct {
	coll *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{coll: db.Collection(notificationsCollection)}
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	mid, err := bson.ObjectIDFromHex(n.Message)
	if err != nil {
		return domain.MalformedID("notifications.create", "message id", n.Message)
	}
	doc := notificationDoc{
		ID:        bson.NewObjectID(),
		User:      n.User,
		Message:   mid,
		CreatedAt: n.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.StoreError("notifications.create", n.User, err)
	}
	n.ID = doc.ID.Hex()
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.MalformedID("notifications.getByID", "notification id", id)
	}
	var doc notificationDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("notifications.getByID", id, err)
	}
	return doc.toDomain(), nil
}

// ListForUser returns the user's notifications in insertion order (_id is
// monotonic per process and roughly so across processes).
func (r *NotificationRepo) ListForUser(ctx context.Context, username string) ([]*domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": username}, opts)
	if err != nil {
		return nil, domain.StoreError("notifications.listForUser", username, err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("notifications.listForUser", username, err)
	}
	res := make([]*domain.Notification, len(docs))
	for i := range docs {
		res[i] = docs[i].toDomain()
	}
	return res, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.MalformedID("notifications.delete", "notification id", id)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, domain.StoreError("notifications.delete", id, err)
	}
	return res.DeletedCount > 0, nil
}
