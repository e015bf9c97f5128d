// internal/game/deal.go
package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/models"
)

// shuffleDeck assigns every deck card a fresh order 0..n-1 using an unbiased
// Durstenfeld permutation. Only legal while the game is in progress.
func shuffleDeck(ctx context.Context, tx Tx, g *models.Game) error {
	if !g.Started || g.Ended {
		return ErrNotInProgress
	}
	deck, err := tx.Zone(ctx, models.LocationDeck)
	if err != nil {
		return err
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	for i, c := range deck {
		c.Order = i
		if err := tx.SaveCard(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// replenishIfEmpty merges the discard pile back into the deck and reshuffles
// when the deck has run dry. The single most-recent discard card is the
// active card of the game and must stay face-up in the discard zone; it is
// explicitly excluded from the merge.
func replenishIfEmpty(ctx context.Context, tx Tx, g *models.Game) (bool, error) {
	deck, err := tx.Zone(ctx, models.LocationDeck)
	if err != nil {
		return false, err
	}
	if len(deck) > 0 {
		return false, nil
	}
	discard, err := tx.Zone(ctx, models.LocationDiscard)
	if err != nil {
		return false, err
	}
	if len(discard) < 2 {
		// Nothing to merge: an empty pile, or only the active card.
		return false, nil
	}
	top := discard[len(discard)-1]
	for i, c := range discard {
		if c.ID == top.ID {
			continue
		}
		c.Location = models.LocationDeck
		c.Order = i
		c.OwnerID = nil
		if err := tx.SaveCard(ctx, c); err != nil {
			return false, err
		}
	}
	if err := shuffleDeck(ctx, tx, g); err != nil {
		return false, err
	}
	return true, nil
}

// dealCard moves the top deck card into a player's hand, replenishing the
// deck first if it is empty. Returns the dealt card and whether a reshuffle
// happened, so the caller can emit DECK_SHUFFLED before DEALT_CARD.
func dealCard(ctx context.Context, tx Tx, g *models.Game, userID uuid.UUID) (*models.Card, bool, error) {
	if !g.Started || g.Ended {
		return nil, false, ErrNotInProgress
	}
	reshuffled, err := replenishIfEmpty(ctx, tx, g)
	if err != nil {
		return nil, false, err
	}
	deck, err := tx.Zone(ctx, models.LocationDeck)
	if err != nil {
		return nil, false, err
	}
	if len(deck) == 0 {
		return nil, reshuffled, ErrDeckExhausted
	}
	card := deck[len(deck)-1]

	hand, err := tx.Hand(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	maxOrder := 0
	for _, c := range hand {
		if c.Order > maxOrder {
			maxOrder = c.Order
		}
	}

	owner := userID
	card.Location = models.LocationHand
	card.Order = maxOrder + 1
	card.OwnerID = &owner
	if err := tx.SaveCard(ctx, card); err != nil {
		return nil, false, err
	}
	return card, reshuffled, nil
}
