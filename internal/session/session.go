// Package session reads and writes the logged-in user record kept in the
// client's persisted storage.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/format"
)

// Storage keys
const (
	KeyUser = "user"
	KeyJWT  = "jwt"
)

// CurrentUser returns the persisted user, nil when absent or unreadable
func CurrentUser(s port.Storage) *entity.User {
	if s == nil {
		return nil
	}
	raw, ok := s.GetItem(KeyUser)
	if !ok || raw == "" || raw == "null" {
		return nil
	}
	var user entity.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

// CurrentViewer resolves the identity bills are filtered for
func CurrentViewer(s port.Storage) format.Viewer {
	return format.ViewerFromUser(CurrentUser(s))
}

// SaveUser persists the user record
func SaveUser(s port.Storage, user entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.SetItem(KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// Token returns the bearer token, "" when absent
func Token(s port.Storage) string {
	if s == nil {
		return ""
	}
	jwt, ok := s.GetItem(KeyJWT)
	if !ok {
		return ""
	}
	return jwt
}
