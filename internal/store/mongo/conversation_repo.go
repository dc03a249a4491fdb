package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"runhub/internal/domain"
)

type ConversationRepo struct {
	coll *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{coll: db.Collection(conversationsCollection)}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	users, err := toObjectIDs(domain.UniqueSorted(c.Users))
	if err != nil {
		return domain.StoreError("conversations.create", "", err)
	}
	doc := conversationDoc{
		ID:             bson.NewObjectID(),
		Users:          users,
		ParticipantKey: domain.ParticipantKey(c.Users),
		Messages:       []bson.ObjectID{},
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.DuplicateConversation("conversations.create", doc.ParticipantKey)
		}
		return domain.StoreError("conversations.create", doc.ParticipantKey, err)
	}
	c.ID = doc.ID.Hex()
	c.ParticipantKey = doc.ParticipantKey
	c.Messages = []string{}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.MalformedID("conversations.getByID", "conversation id", id)
	}
	var doc conversationDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("conversations.getByID", id, err)
	}
	return doc.toDomain(), nil
}

// FindByParticipants matches on the users array rather than participantKey so
// documents written before the key existed are still found, and an exact
// match returning several documents exposes an integrity fault.
func (r *ConversationRepo) FindByParticipants(ctx context.Context, userIDs []string, match domain.ParticipantMatch) ([]*domain.Conversation, error) {
	oids, err := toObjectIDs(domain.UniqueSorted(userIDs))
	if err != nil {
		return nil, domain.StoreError("conversations.findByParticipants", "", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.coll.Find(ctx, participantFilter(oids, match), opts)
	if err != nil {
		return nil, domain.StoreError("conversations.findByParticipants", "", err)
	}
	var docs []conversationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("conversations.findByParticipants", "", err)
	}
	res := make([]*domain.Conversation, len(docs))
	for i := range docs {
		res[i] = docs[i].toDomain()
	}
	return res, nil
}

// participantFilter matches conversations whose users contain oids; an exact
// match also pins the array length.
func participantFilter(oids []bson.ObjectID, match domain.ParticipantMatch) bson.M {
	cond := bson.M{"$all": oids}
	if match == domain.MatchExact {
		cond["$size"] = len(oids)
	}
	return bson.M{"users": cond}
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, messageID string, at time.Time) error {
	cid, err := bson.ObjectIDFromHex(conversationID)
	if err != nil {
		return domain.MalformedID("conversations.appendMessage", "conversation id", conversationID)
	}
	mid, err := bson.ObjectIDFromHex(messageID)
	if err != nil {
		return domain.MalformedID("conversations.appendMessage", "message id", messageID)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": cid},
		bson.M{
			"$push": bson.M{"messages": mid},
			"$max":  bson.M{"updatedAt": at},
		},
	)
	if err != nil {
		return domain.StoreError("conversations.appendMessage", conversationID, err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("conversations.appendMessage", "conversation", conversationID)
	}
	return nil
}

func (r *ConversationRepo) RemoveMessage(ctx context.Context, conversationID, messageID string) error {
	cid, err := bson.ObjectIDFromHex(conversationID)
	if err != nil {
		return domain.MalformedID("conversations.removeMessage", "conversation id", conversationID)
	}
	mid, err := bson.ObjectIDFromHex(messageID)
	if err != nil {
		return domain.MalformedID("conversations.removeMessage", "message id", messageID)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": cid},
		bson.M{"$pull": bson.M{"messages": mid}},
	)
	if err != nil {
		return domain.StoreError("conversations.removeMessage", conversationID, err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("conversations.removeMessage", "conversation", conversationID)
	}
	return nil
}
