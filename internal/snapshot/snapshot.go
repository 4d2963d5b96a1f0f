package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/gamedash/internal/contracts"
)

// Snapshot is a saved dashboard state: the selection and its headline figures
type Snapshot struct {
	ID              string                    `json:"id"`
	DatasetID       string                    `json:"dataset_id"`
	Selection       contracts.FilterSelection `json:"selection"`
	TotalCount      int                       `json:"total_count"`
	MeanUserScore   contracts.Mean            `json:"mean_user_score"`
	MeanCriticScore contracts.Mean            `json:"mean_critic_score"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// FromResult captures an aggregate as a new snapshot with a fresh ID
func FromResult(result *contracts.AggregateResult) *Snapshot {
	return &Snapshot{
		ID:              uuid.NewString(),
		DatasetID:       result.DatasetID,
		Selection:       result.Selection,
		TotalCount:      result.TotalCount,
		MeanUserScore:   result.MeanUserScore,
		MeanCriticScore: result.MeanCriticScore,
		CreatedAt:       time.Now().UTC(),
	}
}

func nullable(m contracts.Mean) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func fromNullable(v *float64) contracts.Mean {
	if v == nil {
		return contracts.Mean{}
	}
	return contracts.Defined(*v)
}
