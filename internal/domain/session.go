package domain

import (
	"encoding/json"
	"time"
)

type RunID string

// RunRef addresses one session by its full identity triple. It doubles as the
// current-session pointer payload kept in the scratch store.
type RunRef struct {
	TeamID TeamID `json:"teamId"`
	UserID UserID `json:"userId"`
	RunID  RunID  `json:"runId"`
}

func (r RunRef) Valid() bool {
	return r.TeamID != "" && r.UserID != "" && r.RunID != ""
}

// LastSessionMarker points at a user's most recent activity, completed or not.
// One per user, overwritten on every step save.
type LastSessionMarker struct {
	TeamID   TeamID    `json:"teamId"`
	UserID   UserID    `json:"userId"`
	RunID    RunID     `json:"runId"`
	StoredAt time.Time `json:"storedAt"`
}

// Session is one pass through the questionnaire by one user. Step payloads are
// caller-named and opaque; Computed plus CompletedAt mark the session terminal
// and eligible for aggregation.
type Session struct {
	RunID       RunID
	TeamID      TeamID
	UserID      UserID
	StartedAt   time.Time
	Steps       map[string]json.RawMessage
	Computed    *ResultSet
	CompletedAt *time.Time
}

func (s Session) Completed() bool {
	return s.Computed != nil && s.CompletedAt != nil
}

func (s Session) Ref() RunRef {
	return RunRef{TeamID: s.TeamID, UserID: s.UserID, RunID: s.RunID}
}

// SetStep records one named step payload, replacing any previous value stored
// under that name.
func (s *Session) SetStep(name string, payload json.RawMessage) {
	if s.Steps == nil {
		s.Steps = map[string]json.RawMessage{}
	}
	s.Steps[name] = payload
}

// Session records persist with step payloads flattened to top-level fields
// alongside the fixed ones. The sync bridge reads the records in that shape,
// so the encoding is part of the storage contract, not a convenience.
const (
	fieldRunID       = "runId"
	fieldTeamID      = "teamId"
	fieldUserID      = "userId"
	fieldStartedAt   = "startedAt"
	fieldComputed    = "computed"
	fieldCompletedAt = "completedAt"
)

func reservedSessionField(name string) bool {
	switch name {
	case fieldRunID, fieldTeamID, fieldUserID, fieldStartedAt, fieldComputed, fieldCompletedAt:
		return true
	default:
		return false
	}
}

func (s Session) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.Steps)+6)
	for name, payload := range s.Steps {
		if reservedSessionField(name) {
			continue
		}
		fields[name] = payload
	}

	put := func(name string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fields[name] = raw
		return nil
	}

	if err := put(fieldRunID, s.RunID); err != nil {
		return nil, err
	}
	if err := put(fieldTeamID, s.TeamID); err != nil {
		return nil, err
	}
	if err := put(fieldUserID, s.UserID); err != nil {
		return nil, err
	}
	if err := put(fieldStartedAt, s.StartedAt); err != nil {
		return nil, err
	}
	if s.Computed != nil {
		if err := put(fieldComputed, s.Computed); err != nil {
			return nil, err
		}
	}
	if s.CompletedAt != nil {
		if err := put(fieldCompletedAt, s.CompletedAt); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := Session{}
	for name, raw := range fields {
		var err error
		switch name {
		case fieldRunID:
			err = json.Unmarshal(raw, &out.RunID)
		case fieldTeamID:
			err = json.Unmarshal(raw, &out.TeamID)
		case fieldUserID:
			err = json.Unmarshal(raw, &out.UserID)
		case fieldStartedAt:
			err = json.Unmarshal(raw, &out.StartedAt)
		case fieldComputed:
			out.Computed = &ResultSet{}
			err = json.Unmarshal(raw, out.Computed)
		case fieldCompletedAt:
			out.CompletedAt = &time.Time{}
			err = json.Unmarshal(raw, out.CompletedAt)
		default:
			if out.Steps == nil {
				out.Steps = map[string]json.RawMessage{}
			}
			out.Steps[name] = raw
		}
		if err != nil {
			return err
		}
	}

	*s = out
	return nil
}
