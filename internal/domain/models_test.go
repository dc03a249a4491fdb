package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantKey(t *testing.T) {
	a := "65f1c0d2e4b0a1a2b3c4d5e1"
	b := "65f1c0d2e4b0a1a2b3c4d5e2"

	assert.Equal(t, ParticipantKey([]string{a, b}), ParticipantKey([]string{b, a}))
	assert.Equal(t, ParticipantKey([]string{a, b}), ParticipantKey([]string{b, a, b}))
	assert.Equal(t, a+","+b, ParticipantKey([]string{b, a}))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(NewID()))
	assert.True(t, IsValidID("65f1c0d2e4b0a1a2b3c4d5e1"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("undefined"))
	assert.False(t, IsValidID("65f1c0d2e4b0a1a2b3c4d5e"))
	assert.False(t, IsValidID("65f1c0d2e4b0a1a2b3c4d5zz"))
}

func TestUserIsRegistered(t *testing.T) {
	var missing *User
	assert.False(t, missing.IsRegistered())
	assert.False(t, (&User{Deleted: true}).IsRegistered())
	assert.True(t, (&User{Username: "alice"}).IsRegistered())
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreError("conversations.create", "abc", cause)

	assert.Equal(t, CodeStore, ErrorCode(err))
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "conversations.create")

	wrapped := errors.Join(errors.New("outer"), NotAParticipant("send", "carol", "c1"))
	assert.Equal(t, CodeNotAParticipant, ErrorCode(wrapped))
	assert.Equal(t, CodeUnknown, ErrorCode(errors.New("plain")))
}

func TestCallerContext(t *testing.T) {
	_, ok := CallerFrom(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), &Caller{UserID: "u1", Username: "alice"})
	c, ok := CallerFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", c.Username)
}
