package manager

import (
	"time"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// Status is a point-in-time view of an instance for operators.
type Status struct {
	ID          string             `json:"id"`
	Event       string             `json:"event"`
	Variant     model.VariantKind  `json:"variant"`
	Key         string             `json:"key"`
	Phase       string             `json:"phase"`
	Reason      model.ReasonCode   `json:"reason,omitempty"`
	Members     []model.PlayerID   `json:"members"`
	Capacity    int                `json:"capacity"`
	Remaining   time.Duration      `json:"remaining_ns"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	ActiveWaves []int              `json:"active_waves,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	GameID      string             `json:"game_id,omitempty"`
	Board       []model.ScoreEntry `json:"board,omitempty"`
}

func (i *Instance) Status() Status {
	st := Status{
		ID:          i.id,
		Event:       i.def.Name,
		Variant:     i.def.Variant,
		Key:         i.key.String(),
		Phase:       i.Phase().String(),
		Reason:      i.EndReason(),
		Members:     i.members.IDs(),
		Capacity:    i.members.Capacity(),
		Remaining:   i.Remaining(),
		Elapsed:     i.Elapsed(),
		ActiveWaves: i.waves.Active(),
		CreatedAt:   i.createdAt,
	}
	if res, ok := i.Result(); ok {
		st.GameID = res.GameID
		st.Board = res.Board
	}
	return st
}
