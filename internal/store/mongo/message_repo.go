package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"runhub/internal/domain"
)

type MessageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{coll: db.Collection(messagesCollection)}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	sender, err := bson.ObjectIDFromHex(m.Sender)
	if err != nil {
		return domain.MalformedID("messages.create", "sender id", m.Sender)
	}
	cid, err := bson.ObjectIDFromHex(m.ConversationID)
	if err != nil {
		return domain.MalformedID("messages.create", "conversation id", m.ConversationID)
	}
	readBy, err := toObjectIDs(m.ReadBy)
	if err != nil {
		return domain.StoreError("messages.create", "", err)
	}

	doc := messageDoc{
		ID:             bson.NewObjectID(),
		MessageContent: m.MessageContent,
		Sender:         sender,
		SentAt:         m.SentAt,
		ReadBy:         readBy,
		ConversationID: cid,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.StoreError("messages.create", m.ConversationID, err)
	}
	m.ID = doc.ID.Hex()
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.MalformedID("messages.getByID", "message id", id)
	}
	var doc messageDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("messages.getByID", id, err)
	}
	return doc.toDomain(), nil
}

// GetByIDs returns the messages in the order of ids, skipping missing ones.
func (r *MessageRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	oids, err := toObjectIDs(ids)
	if err != nil {
		return nil, domain.StoreError("messages.getByIDs", "", err)
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, domain.StoreError("messages.getByIDs", "", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("messages.getByIDs", "", err)
	}

	byID := make(map[string]*domain.Message, len(docs))
	for i := range docs {
		m := docs[i].toDomain()
		byID[m.ID] = m
	}
	res := make([]*domain.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			res = append(res, m)
		}
	}
	return res, nil
}

func (r *MessageRepo) AddReader(ctx context.Context, messageID, userID string) (*domain.Message, error) {
	mid, err := bson.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, domain.MalformedID("messages.addReader", "message id", messageID)
	}
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.MalformedID("messages.addReader", "user id", userID)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc messageDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": mid},
		bson.M{"$addToSet": bson.M{"readBy": uid}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("messages.addReader", messageID, err)
	}
	return doc.toDomain(), nil
}

func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.MalformedID("messages.delete", "message id", id)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return domain.StoreError("messages.delete", id, err)
	}
	return nil
}
