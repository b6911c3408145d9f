package domain

import "time"

// VectorAverages holds the element-wise team mean of each named vector,
// rounded to two decimals. Vectors no included member produced stay empty.
type VectorAverages struct {
	Structure  []float64 `json:"structure"`
	Ecology    []float64 `json:"ecology"`
	PotentialA []float64 `json:"potentialA"`
	PotentialB []float64 `json:"potentialB"`
}

// MemberResult is one included user's contribution, kept raw for detail views.
type MemberResult struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	RunID       RunID     `json:"runId"`
	CompletedAt time.Time `json:"completedAt"`
	Computed    ResultSet `json:"computed"`
}

type TeamAggregate struct {
	Count   int            `json:"count"`
	PerUser []MemberResult `json:"perUser"`
	TeamAvg VectorAverages `json:"teamAvg"`
}
