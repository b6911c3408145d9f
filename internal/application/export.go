package application

import (
	"context"
	"fmt"
	"time"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
	"go.uber.org/zap"
)

// Snapshot is the full durable state in one document: what the remote sync
// bridge mirrors to its hosted store. The scratch pointer is deliberately
// absent; it is not part of durable history.
type Snapshot struct {
	ExportedAt   time.Time                  `json:"exportedAt"`
	Teams        []domain.Team              `json:"teams"`
	Users        []domain.User              `json:"users"`
	Sessions     []domain.Session           `json:"sessions"`
	LastSessions []domain.LastSessionMarker `json:"lastSessions"`
}

type ExportService struct {
	kv       ports.KeyValueStore
	registry *RegistryService
	clock    ports.Clock
	log      *zap.Logger
}

func NewExportService(kv ports.KeyValueStore, registry *RegistryService, clock ports.Clock, log *zap.Logger) *ExportService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ExportService{kv: kv, registry: registry, clock: clock, log: log}
}

func (s *ExportService) Snapshot(ctx context.Context) (Snapshot, error) {
	teams, err := s.registry.Teams(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	users := []domain.User{}
	for _, team := range teams {
		teamUsers, err := s.registry.Users(ctx, team.ID)
		if err != nil {
			return Snapshot{}, err
		}
		users = append(users, teamUsers...)
	}

	sessions := []domain.Session{}
	sessionKeys, err := s.kv.Keys(ctx, allSessionsPrefix())
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan sessions: %w", err)
	}
	for _, key := range sessionKeys {
		session, err := loadJSON(ctx, s.kv, key, domain.Session{})
		if err != nil {
			return Snapshot{}, err
		}
		if session.RunID == "" {
			continue
		}
		sessions = append(sessions, session)
	}

	markers := []domain.LastSessionMarker{}
	markerKeys, err := s.kv.Keys(ctx, allLastSessionsPrefix())
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan last session markers: %w", err)
	}
	for _, key := range markerKeys {
		marker, err := loadJSON(ctx, s.kv, key, domain.LastSessionMarker{})
		if err != nil {
			return Snapshot{}, err
		}
		if marker.RunID == "" {
			continue
		}
		markers = append(markers, marker)
	}

	s.log.Debug("built export snapshot",
		zap.Int("teams", len(teams)),
		zap.Int("users", len(users)),
		zap.Int("sessions", len(sessions)))

	return Snapshot{
		ExportedAt:   s.clock.Now(),
		Teams:        teams,
		Users:        users,
		Sessions:     sessions,
		LastSessions: markers,
	}, nil
}
