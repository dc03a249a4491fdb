package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"runhub/internal/domain"
)

// UserRepo reads the user directory maintained by the profile service.
type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection)}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.MalformedID("users.getByID", "user id", id)
	}
	return r.findOne(ctx, "users.getByID", id, bson.M{"_id": oid})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "users.getByUsername", username, bson.M{"username": username})
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	oids, err := toObjectIDs(domain.UniqueSorted(ids))
	if err != nil {
		return nil, domain.StoreError("users.getByIDs", "", err)
	}
	return r.find(ctx, "users.getByIDs", bson.M{"_id": bson.M{"$in": oids}})
}

func (r *UserRepo) ListFollowers(ctx context.Context, userID string) ([]*domain.User, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	if len(u.Followers) == 0 {
		return nil, nil
	}
	oids, err := toObjectIDs(u.Followers)
	if err != nil {
		return nil, domain.StoreError("users.listFollowers", userID, err)
	}
	return r.find(ctx, "users.listFollowers", bson.M{
		"_id":     bson.M{"$in": oids},
		"deleted": bson.M{"$ne": true},
	})
}

func (r *UserRepo) findOne(ctx context.Context, op, key string, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError(op, key, err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepo) find(ctx context.Context, op string, filter bson.M) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, domain.StoreError(op, "", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError(op, "", err)
	}
	res := make([]*domain.User, len(docs))
	for i := range docs {
		res[i] = docs[i].toDomain()
	}
	return res, nil
}
