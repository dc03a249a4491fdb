package domain

import "go.mongodb.org/mongo-driver/v2/bson"

// IsValidID reports whether id has the shape of a store object id
// (24 hexadecimal characters).
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// NewID returns a fresh object id in its hex form.
func NewID() string {
	return bson.NewObjectID().Hex()
}
