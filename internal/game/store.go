// internal/game/store.go
package game

import (
	"context"

	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/models"
)

// Store is the persistence contract the rule engine runs against. Two
// implementations exist: the Postgres store in internal/database (the
// production backend) and an in-memory store used by tests and when running
// without a database.
//
// WithGame executes fn inside one transaction scoped to a single game. All
// reads and writes issued through the Tx are serialized against every other
// WithGame call for the same game id, across processes. If fn returns an
// error the transaction is rolled back and nothing is persisted; an unknown
// game id yields ErrGameNotFound.
type Store interface {
	// CreateGame persists a new game row together with its host membership
	// and the full card set, atomically.
	CreateGame(ctx context.Context, g *models.Game, host *models.GameUser, deck []*models.Card) error

	WithGame(ctx context.Context, gameID uuid.UUID, fn func(tx Tx) error) error
}

// Tx is the transactional view of one game's rows.
type Tx interface {
	// Game returns the game row as of this transaction.
	Game(ctx context.Context) (*models.Game, error)
	// SaveGame persists started/ended/turn/wildcard fields.
	SaveGame(ctx context.Context, g *models.Game) error

	// Users returns the game's players ordered by seat.
	Users(ctx context.Context) ([]*models.GameUser, error)
	AddUser(ctx context.Context, u *models.GameUser) error
	// SaveUser persists seat order and state for an existing player.
	SaveUser(ctx context.Context, u *models.GameUser) error
	RemoveUser(ctx context.Context, userID uuid.UUID) error

	// Cards returns every card in the game.
	Cards(ctx context.Context) ([]*models.Card, error)
	// Zone returns the cards in one zone ordered by their zone-local order.
	Zone(ctx context.Context, loc models.Location) ([]*models.Card, error)
	// Hand returns one player's hand in display order.
	Hand(ctx context.Context, userID uuid.UUID) ([]*models.Card, error)
	// SaveCard persists a card's zone, order and owner.
	SaveCard(ctx context.Context, c *models.Card) error

	// Destroy removes the game's cards, memberships and the game row itself.
	Destroy(ctx context.Context) error
}

// readState assembles the full unsanitized truth inside a transaction.
func readState(ctx context.Context, tx Tx) (*models.GameState, error) {
	g, err := tx.Game(ctx)
	if err != nil {
		return nil, err
	}
	users, err := tx.Users(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := tx.Cards(ctx)
	if err != nil {
		return nil, err
	}
	return &models.GameState{
		Started:   g.Started,
		Ended:     g.Ended,
		WildColor: g.WildColor,
		Users:     users,
		Cards:     cards,
	}, nil
}
