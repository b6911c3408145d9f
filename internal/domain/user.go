package domain

import (
	"fmt"
	"strings"
	"time"
)

type UserID string

type User struct {
	ID        UserID    `json:"userId"`
	TeamID    TeamID    `json:"teamId"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"createdAt"`
}

// Matches reports whether the user carries the given natural identity key.
// Both components compare case-sensitively.
func (u User) Matches(name, title string) bool {
	return u.Name == name && u.Title == title
}

func (u User) Validate() error {
	if strings.TrimSpace(string(u.ID)) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(string(u.TeamID)) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}

	return nil
}
