package application

import (
	"context"
	"fmt"
	"math"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"go.uber.org/zap"
)

// AggregateService reduces a team's individual results into one report: each
// visible user contributes their single latest completed session, and the
// four result vectors are averaged element-wise across contributors.
type AggregateService struct {
	registry *RegistryService
	sessions *SessionService
	log      *zap.Logger
}

func NewAggregateService(registry *RegistryService, sessions *SessionService, log *zap.Logger) *AggregateService {
	if log == nil {
		log = zap.NewNop()
	}

	return &AggregateService{registry: registry, sessions: sessions, log: log}
}

func (s *AggregateService) AggregateTeam(ctx context.Context, teamID domain.TeamID) (domain.TeamAggregate, error) {
	users, err := s.registry.Users(ctx, teamID)
	if err != nil {
		return domain.TeamAggregate{}, fmt.Errorf("list users: %w", err)
	}

	sums := map[string][]float64{}
	perUser := []domain.MemberResult{}
	count := 0

	for _, user := range users {
		if user.Hidden {
			continue
		}

		session, err := s.sessions.LatestCompleted(ctx, teamID, user.ID)
		if err != nil {
			return domain.TeamAggregate{}, fmt.Errorf("latest completed session for %s: %w", user.ID, err)
		}
		if session == nil {
			continue
		}

		perUser = append(perUser, domain.MemberResult{
			Name:        user.Name,
			Title:       user.Title,
			RunID:       session.RunID,
			CompletedAt: *session.CompletedAt,
			Computed:    *session.Computed,
		})

		for _, key := range domain.VectorKeys {
			sums[key] = accumulate(sums[key], session.Computed.Vector(key))
		}
		count++
	}

	s.log.Debug("aggregated team", zap.String("team_id", string(teamID)), zap.Int("count", count))

	return domain.TeamAggregate{
		Count:   count,
		PerUser: perUser,
		TeamAvg: domain.VectorAverages{
			Structure:  average(sums[domain.VectorStructure], count),
			Ecology:    average(sums[domain.VectorEcology], count),
			PotentialA: average(sums[domain.VectorPotentialA], count),
			PotentialB: average(sums[domain.VectorPotentialB], count),
		},
	}, nil
}

// accumulate adds vec into sum index-wise, growing sum as needed. Shorter
// vectors simply stop contributing past their own length, so members with
// mismatched vector lengths still combine.
func accumulate(sum, vec []float64) []float64 {
	for i, v := range vec {
		if i < len(sum) {
			sum[i] += v
			continue
		}
		sum = append(sum, v)
	}

	return sum
}

func average(sum []float64, count int) []float64 {
	avg := make([]float64, 0, len(sum))
	if count == 0 {
		return avg
	}

	for _, v := range sum {
		avg = append(avg, round2(v/float64(count)))
	}

	return avg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
