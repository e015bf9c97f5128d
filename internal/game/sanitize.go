// internal/game/sanitize.go
package game

import (
	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/models"
)

// SanitizedCard is a card as one specific viewer is allowed to see it. For
// cards the viewer may not inspect, identity, color and value are omitted and
// only zone, order and owner remain.
type SanitizedCard struct {
	ID       *uuid.UUID       `json:"card_id,omitempty"`
	Color    models.CardColor `json:"color,omitempty"`
	Value    models.CardValue `json:"value,omitempty"`
	Location models.Location  `json:"location"`
	Order    int              `json:"order"`
	OwnerID  *uuid.UUID       `json:"user_id,omitempty"`
}

// SanitizedState is the per-viewer-safe projection of a full game state.
type SanitizedState struct {
	Started   bool               `json:"started"`
	Ended     bool               `json:"ended"`
	WildColor *models.CardColor  `json:"chosen_wildcard_color,omitempty"`
	Users     []*models.GameUser `json:"users"`
	Cards     []*SanitizedCard   `json:"cards"`
}

// Sanitize projects the full game state for one viewer. A viewer sees the
// color and value of exactly two classes of cards: their own, and the single
// most-recent discard card. Everything else is face-down.
func Sanitize(st *models.GameState, viewerID uuid.UUID) *SanitizedState {
	topDiscard := topOfDiscard(st.Cards)

	out := &SanitizedState{
		Started:   st.Started,
		Ended:     st.Ended,
		WildColor: st.WildColor,
		Users:     st.Users,
		Cards:     make([]*SanitizedCard, 0, len(st.Cards)),
	}
	for _, c := range st.Cards {
		visible := (c.OwnerID != nil && *c.OwnerID == viewerID) ||
			(topDiscard != nil && c.ID == topDiscard.ID)
		sc := &SanitizedCard{
			Location: c.Location,
			Order:    c.Order,
			OwnerID:  c.OwnerID,
		}
		if visible {
			id := c.ID
			sc.ID = &id
			sc.Color = c.Color
			sc.Value = c.Value
		}
		out.Cards = append(out.Cards, sc)
	}
	return out
}

// topOfDiscard returns the discard card with the highest order, or nil when
// the pile is empty. Discard orders are unique under correct sequencing; on a
// tie the first encountered maximal card wins.
func topOfDiscard(cards []*models.Card) *models.Card {
	var top *models.Card
	for _, c := range cards {
		if c.Location != models.LocationDiscard {
			continue
		}
		if top == nil || c.Order > top.Order {
			top = c
		}
	}
	return top
}
