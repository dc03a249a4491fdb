// Package memory is an in-process document store with the same semantics as
// the MongoDB store. It backs local runs (STORE_DRIVER=memory) and tests.
package memory

import (
	"sync"

	"runhub/internal/domain"
)

// DB holds every collection behind a single lock.
type DB struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	conversations map[string]*domain.Conversation
	convKeys      map[string]string // participant key -> conversation id
	messages      map[string]*domain.Message
	notifications map[string]*domain.Notification
	notifOrder    []string
}

// NewDB returns an empty store.
func NewDB() *DB {
	return &DB{
		users:         make(map[string]*domain.User),
		conversations: make(map[string]*domain.Conversation),
		convKeys:      make(map[string]string),
		messages:      make(map[string]*domain.Message),
		notifications: make(map[string]*domain.Notification),
	}
}

// PutUser inserts or replaces a user record in the directory. An empty ID is
// filled in.
func (db *DB) PutUser(u *domain.User) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()

	cp := copyUser(u)
	if cp.ID == "" {
		cp.ID = domain.NewID()
	}
	db.users[cp.ID] = cp
	return copyUser(cp)
}

// Follow records that followerID follows userID.
func (db *DB) Follow(followerID, userID string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u, ok := db.users[userID]; ok && !contains(u.Followers, followerID) {
		u.Followers = append(u.Followers, followerID)
	}
	if f, ok := db.users[followerID]; ok && !contains(f.Following, userID) {
		f.Following = append(f.Following, userID)
	}
}

// SoftDeleteUser flags a user as deleted.
func (db *DB) SoftDeleteUser(id string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u, ok := db.users[id]; ok {
		u.Deleted = true
	}
}

// ConversationCount returns how many conversations are stored.
func (db *DB) ConversationCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.conversations)
}

// MessageCount returns how many messages are stored.
func (db *DB) MessageCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.messages)
}

// NotificationCount returns how many notifications are stored.
func (db *DB) NotificationCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.notifications)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	cp.Following = append([]string(nil), u.Following...)
	cp.Followers = append([]string(nil), u.Followers...)
	return &cp
}

func copyConversation(c *domain.Conversation) *domain.Conversation {
	cp := *c
	cp.Users = append([]string(nil), c.Users...)
	cp.Messages = append([]string(nil), c.Messages...)
	return &cp
}

func copyMessage(m *domain.Message) *domain.Message {
	cp := *m
	cp.ReadBy = append([]string(nil), m.ReadBy...)
	return &cp
}
