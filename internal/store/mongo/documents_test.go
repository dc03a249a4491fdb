package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"runhub/internal/domain"
)

func TestToObjectIDs(t *testing.T) {
	a, b := bson.NewObjectID(), bson.NewObjectID()

	oids, err := toObjectIDs([]string{a.Hex(), b.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{a, b}, oids)
	assert.Equal(t, []string{a.Hex(), b.Hex()}, toHex(oids))

	_, err = toObjectIDs([]string{a.Hex(), "not-an-id"})
	assert.Error(t, err)
}

func TestMessageDocToDomain(t *testing.T) {
	sender, conv := bson.NewObjectID(), bson.NewObjectID()
	sentAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := messageDoc{
		ID:             bson.NewObjectID(),
		MessageContent: "tempo run at 6?",
		Sender:         sender,
		SentAt:         sentAt,
		ReadBy:         []bson.ObjectID{sender},
		ConversationID: conv,
	}

	m := doc.toDomain()
	assert.Equal(t, doc.ID.Hex(), m.ID)
	assert.Equal(t, sender.Hex(), m.Sender)
	assert.Equal(t, conv.Hex(), m.ConversationID)
	assert.Equal(t, []string{sender.Hex()}, m.ReadBy)
	assert.True(t, sentAt.Equal(m.SentAt))
}

func TestParticipantFilter(t *testing.T) {
	a, b := bson.NewObjectID(), bson.NewObjectID()
	oids := []bson.ObjectID{a, b}

	exact := participantFilter(oids, domain.MatchExact)
	assert.Equal(t, bson.M{"users": bson.M{"$all": oids, "$size": 2}}, exact)

	superset := participantFilter(oids, domain.MatchSuperset)
	assert.Equal(t, bson.M{"users": bson.M{"$all": oids}}, superset)
}
