package application

import (
	"context"
	"fmt"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
	"go.uber.org/zap"
)

// RegistryService manages team and user identities. Ensure operations are
// idempotent under their natural keys: team name for teams, (name, title)
// within a team for users. Lookups are linear scans over the stored
// collections, which is fine at single-device scale.
type RegistryService struct {
	kv    ports.KeyValueStore
	clock ports.Clock
	ids   ports.IDGenerator
	log   *zap.Logger
}

func NewRegistryService(kv ports.KeyValueStore, clock ports.Clock, ids ports.IDGenerator, log *zap.Logger) *RegistryService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ids == nil {
		ids = ports.RandomIDGenerator{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &RegistryService{kv: kv, clock: clock, ids: ids, log: log}
}

func (s *RegistryService) EnsureTeam(ctx context.Context, teamName string) (domain.Team, error) {
	teams, err := loadJSON(ctx, s.kv, teamsKey(), []domain.Team{})
	if err != nil {
		return domain.Team{}, fmt.Errorf("load teams: %w", err)
	}

	for _, team := range teams {
		if team.Name == teamName {
			return team, nil
		}
	}

	team := domain.Team{
		ID:        domain.TeamID(s.ids.NewID()),
		Name:      teamName,
		CreatedAt: s.clock.Now(),
	}
	if err := team.Validate(); err != nil {
		return domain.Team{}, err
	}

	teams = append(teams, team)
	if err := saveJSON(ctx, s.kv, teamsKey(), teams); err != nil {
		return domain.Team{}, fmt.Errorf("save teams: %w", err)
	}

	s.log.Debug("created team", zap.String("team_id", string(team.ID)), zap.String("team_name", team.Name))
	return team, nil
}

func (s *RegistryService) EnsureUser(ctx context.Context, teamID domain.TeamID, name, title string) (domain.User, error) {
	users, err := loadJSON(ctx, s.kv, usersKey(teamID), []domain.User{})
	if err != nil {
		return domain.User{}, fmt.Errorf("load users: %w", err)
	}

	for _, user := range users {
		if user.Matches(name, title) {
			return user, nil
		}
	}

	user := domain.User{
		ID:        domain.UserID(s.ids.NewID()),
		TeamID:    teamID,
		Name:      name,
		Title:     title,
		Hidden:    false,
		CreatedAt: s.clock.Now(),
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	users = append(users, user)
	if err := saveJSON(ctx, s.kv, usersKey(teamID), users); err != nil {
		return domain.User{}, fmt.Errorf("save users: %w", err)
	}

	s.log.Debug("created user", zap.String("user_id", string(user.ID)), zap.String("name", user.Name))
	return user, nil
}

// SetUserHidden toggles the only mutable user field. An unknown user ID is a
// silent no-op, not an error.
func (s *RegistryService) SetUserHidden(ctx context.Context, teamID domain.TeamID, userID domain.UserID, hidden bool) error {
	users, err := loadJSON(ctx, s.kv, usersKey(teamID), []domain.User{})
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	for i := range users {
		if users[i].ID != userID {
			continue
		}

		users[i].Hidden = hidden
		if err := saveJSON(ctx, s.kv, usersKey(teamID), users); err != nil {
			return fmt.Errorf("save users: %w", err)
		}
		return nil
	}

	return nil
}

func (s *RegistryService) Teams(ctx context.Context) ([]domain.Team, error) {
	teams, err := loadJSON(ctx, s.kv, teamsKey(), []domain.Team{})
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}

	return teams, nil
}

func (s *RegistryService) TeamByName(ctx context.Context, teamName string) (domain.Team, error) {
	teams, err := s.Teams(ctx)
	if err != nil {
		return domain.Team{}, err
	}

	for _, team := range teams {
		if team.Name == teamName {
			return team, nil
		}
	}

	return domain.Team{}, domain.ErrTeamNotFound
}

func (s *RegistryService) Users(ctx context.Context, teamID domain.TeamID) ([]domain.User, error) {
	users, err := loadJSON(ctx, s.kv, usersKey(teamID), []domain.User{})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	return users, nil
}
