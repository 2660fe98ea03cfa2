package cache

import (
	"encoding/json"
	"strings"
	"time"

	"receipts/internal/model"

	"github.com/google/uuid"
)

const userEntryVersion = 1

// UserKey is the cache key for a login; logins are case-insensitive
func UserKey(login string) string {
	return "user:" + strings.ToLower(login)
}

// CachedUser is the subset of a user that is safe to keep outside the database
type CachedUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userEntry struct {
	Version int        `json:"v"`
	User    CachedUser `json:"user"`
}

// EncodeUser serializes u without the password hash or refresh token
func EncodeUser(u *model.User) ([]byte, error) {
	return json.Marshal(userEntry{
		Version: userEntryVersion,
		User: CachedUser{
			ID:        u.ID,
			Name:      u.Name,
			Login:     u.Login,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
	})
}

// DecodeUser returns false for corrupt payloads and unknown versions
func DecodeUser(data []byte) (*model.User, bool) {
	var entry userEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Version != userEntryVersion || entry.User.ID == uuid.Nil {
		return nil, false
	}
	return &model.User{
		ID:        entry.User.ID,
		Name:      entry.User.Name,
		Login:     entry.User.Login,
		CreatedAt: entry.User.CreatedAt,
		UpdatedAt: entry.User.UpdatedAt,
	}, true
}
