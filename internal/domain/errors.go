package domain

import "errors"

var (
	ErrNoActiveSession = errors.New("no active session: start a run first")
	ErrTeamNotFound    = errors.New("team not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrKeyNotFound     = errors.New("key not found")
)
