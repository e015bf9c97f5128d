// internal/game/play.go
package game

import (
	"context"

	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/models"
)

// PlayCard validates and applies one play by the acting player: moves the
// card to the top of the discard pile, records the declared wild color if
// any, resolves the card's effect on the turn pointer, and detects the win.
// On any violation nothing is mutated and no event is emitted.
func (s *Session) PlayCard(ctx context.Context, userID, cardID uuid.UUID, chosen *models.CardColor) error {
	var evs []Event
	var played *models.Card
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		evs = evs[:0]
		g, err := tx.Game(ctx)
		if err != nil {
			return err
		}
		if !g.Started || g.Ended {
			return ErrNotInProgress
		}
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		var actor *models.GameUser
		for _, u := range users {
			if u.UserID == userID {
				actor = u
			}
		}
		if actor == nil {
			return ErrNotInGame
		}
		if actor.State != models.StatePlaying || actor.SeatOrder != g.CurrentSeat {
			return ErrNotYourTurn
		}

		hand, err := tx.Hand(ctx, userID)
		if err != nil {
			return err
		}
		var card *models.Card
		for _, c := range hand {
			if c.ID == cardID {
				card = c
			}
		}
		if card == nil {
			return ErrCardNotInHand
		}

		discard, err := tx.Zone(ctx, models.LocationDiscard)
		if err != nil {
			return err
		}
		var top *models.Card
		if len(discard) > 0 {
			top = discard[len(discard)-1]
		}
		if err := checkLegal(card, top, g.WildColor); err != nil {
			return err
		}

		if card.Wild() {
			if chosen == nil {
				return ErrColorRequired
			}
			if !chosen.Choosable() {
				return ErrInvalidColor
			}
			g.WildColor = chosen
		} else {
			g.WildColor = nil
		}

		// Move the card face-up onto the pile.
		card.Order = 0
		if top != nil {
			card.Order = top.Order + 1
		}
		card.Location = models.LocationDiscard
		card.OwnerID = nil
		if err := tx.SaveCard(ctx, card); err != nil {
			return err
		}
		played = card
		evs = append(evs, Event{
			Type:      EventCardPlayed,
			UserID:    &userID,
			CardColor: card.Color,
			CardValue: card.Value,
		})

		if len(hand) == 1 {
			// That was the actor's last card.
			actor.State = models.StateWon
			if err := tx.SaveUser(ctx, actor); err != nil {
				return err
			}
			g.Ended = true
			if err := tx.SaveGame(ctx, g); err != nil {
				return err
			}
			evs = append(evs, Event{Type: EventGameEnded})
			return nil
		}

		effectEvs, err := applyEffect(ctx, tx, g, card, users)
		if err != nil {
			return err
		}
		evs = append(evs, effectEvs...)
		return tx.SaveGame(ctx, g)
	})
	if err != nil {
		return err
	}
	s.logAction(ctx, userID, "card_played", map[string]interface{}{
		"card_id": played.ID,
		"color":   played.Color,
		"value":   played.Value,
	})
	s.broadcast(evs...)
	s.BroadcastState(ctx)
	return nil
}

// checkLegal enforces the match rule: wild cards always play; otherwise the
// card must match the top discard's color or value. When the top card is
// itself BLACK the declared wild color stands in for its color. An empty
// discard pile accepts any card.
func checkLegal(card, top *models.Card, wildColor *models.CardColor) error {
	if card.Wild() || top == nil {
		return nil
	}
	topColor := top.Color
	if top.Color == models.ColorBlack && wildColor != nil {
		topColor = *wildColor
	}
	if card.Color != topColor && card.Value != top.Value {
		return ErrIllegalCard
	}
	return nil
}

// applyEffect resolves the played card against the turn pointer. Numerals
// and wilds advance one seat; SKIP advances two; REVERSE flips the rotation
// (with two players it behaves as a SKIP); DRAW_TWO / DRAW_FOUR deal to the
// next player and skip them.
func applyEffect(ctx context.Context, tx Tx, g *models.Game, card *models.Card, users []*models.GameUser) ([]Event, error) {
	n := len(users)
	advance := func(seats int) {
		g.CurrentSeat = ((g.CurrentSeat+seats*g.Direction.Step())%n + n) % n
	}

	var evs []Event
	switch card.Value {
	case models.ValueSkip:
		advance(2)
		evs = append(evs, Event{Type: EventSkippedTurn})

	case models.ValueReverse:
		g.Direction = g.Direction.Flip()
		if n == 2 {
			advance(2)
		} else {
			advance(1)
		}
		evs = append(evs, Event{Type: EventReversedTurns})

	case models.ValueDrawTwo, models.ValueDrawFour:
		count := 2
		if card.Value == models.ValueDrawFour {
			count = 4
		}
		targetSeat := ((g.CurrentSeat+g.Direction.Step())%n + n) % n
		var target *models.GameUser
		for _, u := range users {
			if u.SeatOrder == targetSeat {
				target = u
			}
		}
		if target == nil {
			return nil, ErrNotInGame
		}
		for i := 0; i < count; i++ {
			_, reshuffled, err := dealCard(ctx, tx, g, target.UserID)
			if err != nil {
				return nil, err
			}
			if reshuffled {
				evs = append(evs, Event{Type: EventDeckShuffled})
			}
			evs = append(evs, userEvent(EventDealtCard, target.UserID))
		}
		advance(2)
		evs = append(evs, Event{Type: EventSkippedTurn})

	default:
		advance(1)
	}
	return evs, nil
}
