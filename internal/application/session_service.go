package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
	"go.uber.org/zap"
)

// SessionService records questionnaire runs. Durable history lives in the
// injected durable store; the current-session pointer lives in a separate
// scratch store whose contents do not survive the scope that created them.
type SessionService struct {
	durable  ports.KeyValueStore
	scratch  ports.KeyValueStore
	registry *RegistryService
	clock    ports.Clock
	ids      ports.IDGenerator
	log      *zap.Logger
}

func NewSessionService(durable, scratch ports.KeyValueStore, registry *RegistryService, clock ports.Clock, ids ports.IDGenerator, log *zap.Logger) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ids == nil {
		ids = ports.RandomIDGenerator{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SessionService{
		durable:  durable,
		scratch:  scratch,
		registry: registry,
		clock:    clock,
		ids:      ids,
		log:      log,
	}
}

type StartedRun struct {
	Team  domain.Team
	User  domain.User
	RunID domain.RunID
}

// StartRun resolves (or creates) the team and user, opens a fresh session
// holding only its start time, and makes it current. This is the only entry
// point that creates a new run.
func (s *SessionService) StartRun(ctx context.Context, teamName, testerName, title string) (StartedRun, error) {
	team, err := s.registry.EnsureTeam(ctx, teamName)
	if err != nil {
		return StartedRun{}, fmt.Errorf("ensure team: %w", err)
	}

	user, err := s.registry.EnsureUser(ctx, team.ID, testerName, title)
	if err != nil {
		return StartedRun{}, fmt.Errorf("ensure user: %w", err)
	}

	session := domain.Session{
		RunID:     domain.RunID(s.ids.NewID()),
		TeamID:    team.ID,
		UserID:    user.ID,
		StartedAt: s.clock.Now(),
	}

	if err := saveJSON(ctx, s.durable, sessionKey(session.Ref()), session); err != nil {
		return StartedRun{}, fmt.Errorf("save session: %w", err)
	}

	if err := s.SetCurrent(ctx, session.Ref()); err != nil {
		return StartedRun{}, err
	}

	s.log.Debug("started run",
		zap.String("team_id", string(team.ID)),
		zap.String("user_id", string(user.ID)),
		zap.String("run_id", string(session.RunID)))

	return StartedRun{Team: team, User: user, RunID: session.RunID}, nil
}

// SetCurrent points the scratch store at an existing run, letting subsequent
// SaveStep/SaveComputed calls omit the identity triple.
func (s *SessionService) SetCurrent(ctx context.Context, ref domain.RunRef) error {
	if !ref.Valid() {
		return fmt.Errorf("set current session: incomplete run reference")
	}

	if err := saveJSON(ctx, s.scratch, currentSessionKey(), ref); err != nil {
		return fmt.Errorf("save current session pointer: %w", err)
	}

	return nil
}

// Current returns the active run pointer. A missing or unparsable pointer
// reports ok=false rather than an error.
func (s *SessionService) Current(ctx context.Context) (domain.RunRef, bool, error) {
	ref, err := loadJSON(ctx, s.scratch, currentSessionKey(), domain.RunRef{})
	if err != nil {
		return domain.RunRef{}, false, err
	}

	return ref, ref.Valid(), nil
}

// SaveStep stores one named step payload on the current session, overwriting
// any previous payload under that name. Step names are caller policy; nothing
// is validated here.
func (s *SessionService) SaveStep(ctx context.Context, stepName string, payload json.RawMessage) (domain.Session, error) {
	ref, ok, err := s.Current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrNoActiveSession
	}

	session, err := s.loadOrShell(ctx, ref)
	if err != nil {
		return domain.Session{}, err
	}

	session.SetStep(stepName, payload)

	if err := saveJSON(ctx, s.durable, sessionKey(ref), session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	if err := s.touchMarker(ctx, ref); err != nil {
		return domain.Session{}, err
	}

	s.log.Debug("saved step", zap.String("run_id", string(ref.RunID)), zap.String("step", stepName))
	return session, nil
}

// SaveComputed attaches the scored result and stamps the completion time,
// the sole transition that makes a session visible to aggregation.
func (s *SessionService) SaveComputed(ctx context.Context, computed domain.ResultSet) (domain.Session, error) {
	ref, ok, err := s.Current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrNoActiveSession
	}

	session, err := s.loadOrShell(ctx, ref)
	if err != nil {
		return domain.Session{}, err
	}

	completedAt := s.clock.Now()
	session.Computed = &computed
	session.CompletedAt = &completedAt

	if err := saveJSON(ctx, s.durable, sessionKey(ref), session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	if err := s.touchMarker(ctx, ref); err != nil {
		return domain.Session{}, err
	}

	s.log.Debug("completed run", zap.String("run_id", string(ref.RunID)))
	return session, nil
}

func (s *SessionService) Session(ctx context.Context, ref domain.RunRef) (domain.Session, error) {
	session, err := loadJSON(ctx, s.durable, sessionKey(ref), domain.Session{})
	if err != nil {
		return domain.Session{}, err
	}
	if session.RunID == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return session, nil
}

// LatestCompleted returns the user's completed session with the greatest
// completion time, or nil when the user has never finished a run.
func (s *SessionService) LatestCompleted(ctx context.Context, teamID domain.TeamID, userID domain.UserID) (*domain.Session, error) {
	keys, err := s.durable.Keys(ctx, sessionPrefix(teamID, userID))
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	var latest *domain.Session
	for _, key := range keys {
		session, err := loadJSON(ctx, s.durable, key, domain.Session{})
		if err != nil {
			return nil, err
		}
		if !session.Completed() {
			continue
		}
		if latest == nil || session.CompletedAt.After(*latest.CompletedAt) {
			copied := session
			latest = &copied
		}
	}

	return latest, nil
}

func (s *SessionService) LastSession(ctx context.Context, teamID domain.TeamID, userID domain.UserID) (*domain.LastSessionMarker, error) {
	marker, err := loadJSON(ctx, s.durable, lastSessionKey(teamID, userID), domain.LastSessionMarker{})
	if err != nil {
		return nil, err
	}
	if marker.RunID == "" {
		return nil, nil
	}

	return &marker, nil
}

// loadOrShell fetches the addressed session, rebuilding a minimal shell from
// the pointer identity when the persisted record is gone. Recovery only; a
// shell means durable state was lost out from under an active run.
func (s *SessionService) loadOrShell(ctx context.Context, ref domain.RunRef) (domain.Session, error) {
	session, err := loadJSON(ctx, s.durable, sessionKey(ref), domain.Session{})
	if err != nil {
		return domain.Session{}, err
	}

	if session.RunID == "" {
		s.log.Warn("session record missing, rebuilding shell", zap.String("run_id", string(ref.RunID)))
		session = domain.Session{
			RunID:     ref.RunID,
			TeamID:    ref.TeamID,
			UserID:    ref.UserID,
			StartedAt: s.clock.Now(),
		}
	}

	return session, nil
}

func (s *SessionService) touchMarker(ctx context.Context, ref domain.RunRef) error {
	marker := domain.LastSessionMarker{
		TeamID:   ref.TeamID,
		UserID:   ref.UserID,
		RunID:    ref.RunID,
		StoredAt: s.clock.Now(),
	}

	if err := saveJSON(ctx, s.durable, lastSessionKey(ref.TeamID, ref.UserID), marker); err != nil {
		return fmt.Errorf("save last session marker: %w", err)
	}

	return nil
}
