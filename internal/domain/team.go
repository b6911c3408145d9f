package domain

import (
	"fmt"
	"strings"
	"time"
)

type TeamID string

type Team struct {
	ID        TeamID    `json:"teamId"`
	Name      string    `json:"teamName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t Team) Validate() error {
	if strings.TrimSpace(string(t.ID)) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
