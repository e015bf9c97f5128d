// internal/database/game.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/models"
)

// PG is the Postgres-backed game store. Per-game serialization comes from
// the database itself: WithGame locks the game row FOR UPDATE as its first
// statement, so no two transactions on the same game interleave even across
// server processes. Operations on different games never contend.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

var _ game.Store = (*PG)(nil)

func (s *PG) CreateGame(ctx context.Context, g *models.Game, host *models.GameUser, deck []*models.Card) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO games (id, started, ended, current_seat, direction, wild_color)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.Started, g.Ended, g.CurrentSeat, g.Direction, g.WildColor)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO game_users (game_id, user_id, username, seat_order, state, is_host)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, host.UserID, host.Username, host.SeatOrder, host.State, host.IsHost)
		if err != nil {
			return err
		}
		for _, c := range deck {
			_, err = tx.Exec(ctx,
				`INSERT INTO cards (id, game_id, color, value, location, ord, owner_id)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				c.ID, g.ID, c.Color, c.Value, c.Location, c.Order, c.OwnerID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

func (s *PG) WithGame(ctx context.Context, gameID uuid.UUID, fn func(tx game.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// Lock the game row first; this is what serializes all operations
		// for one game.
		var locked bool
		err := tx.QueryRow(ctx,
			`SELECT TRUE FROM games WHERE id = $1 FOR UPDATE`, gameID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return game.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("lock game %s: %w", gameID, err)
		}
		return fn(&pgTx{tx: tx, gameID: gameID})
	})
}

// pgTx is one locked transaction scoped to a single game's rows.
type pgTx struct {
	tx     pgx.Tx
	gameID uuid.UUID
}

func (t *pgTx) Game(ctx context.Context) (*models.Game, error) {
	g := &models.Game{ID: t.gameID}
	err := t.tx.QueryRow(ctx,
		`SELECT started, ended, current_seat, direction, wild_color
		 FROM games WHERE id = $1`, t.gameID).
		Scan(&g.Started, &g.Ended, &g.CurrentSeat, &g.Direction, &g.WildColor)
	if err != nil {
		return nil, fmt.Errorf("read game: %w", err)
	}
	return g, nil
}

func (t *pgTx) SaveGame(ctx context.Context, g *models.Game) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE games SET started=$1, ended=$2, current_seat=$3, direction=$4, wild_color=$5
		 WHERE id = $6`,
		g.Started, g.Ended, g.CurrentSeat, g.Direction, g.WildColor, t.gameID)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (t *pgTx) Users(ctx context.Context) ([]*models.GameUser, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT user_id, username, seat_order, state, is_host
		 FROM game_users WHERE game_id = $1 ORDER BY seat_order`, t.gameID)
	if err != nil {
		return nil, fmt.Errorf("read game users: %w", err)
	}
	defer rows.Close()

	var users []*models.GameUser
	for rows.Next() {
		u := &models.GameUser{}
		if err := rows.Scan(&u.UserID, &u.Username, &u.SeatOrder, &u.State, &u.IsHost); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (t *pgTx) AddUser(ctx context.Context, u *models.GameUser) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO game_users (game_id, user_id, username, seat_order, state, is_host)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.gameID, u.UserID, u.Username, u.SeatOrder, u.State, u.IsHost)
	if err != nil {
		return fmt.Errorf("add game user: %w", err)
	}
	return nil
}

func (t *pgTx) SaveUser(ctx context.Context, u *models.GameUser) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE game_users SET seat_order=$1, state=$2 WHERE game_id=$3 AND user_id=$4`,
		u.SeatOrder, u.State, t.gameID, u.UserID)
	if err != nil {
		return fmt.Errorf("save game user: %w", err)
	}
	return nil
}

func (t *pgTx) RemoveUser(ctx context.Context, userID uuid.UUID) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM game_users WHERE game_id=$1 AND user_id=$2`, t.gameID, userID)
	if err != nil {
		return fmt.Errorf("remove game user: %w", err)
	}
	return nil
}

func (t *pgTx) Cards(ctx context.Context) ([]*models.Card, error) {
	return t.queryCards(ctx,
		`SELECT id, color, value, location, ord, owner_id
		 FROM cards WHERE game_id = $1 ORDER BY location, ord`, t.gameID)
}

func (t *pgTx) Zone(ctx context.Context, loc models.Location) ([]*models.Card, error) {
	return t.queryCards(ctx,
		`SELECT id, color, value, location, ord, owner_id
		 FROM cards WHERE game_id = $1 AND location = $2 ORDER BY ord`, t.gameID, loc)
}

func (t *pgTx) Hand(ctx context.Context, userID uuid.UUID) ([]*models.Card, error) {
	return t.queryCards(ctx,
		`SELECT id, color, value, location, ord, owner_id
		 FROM cards WHERE game_id = $1 AND location = 'HAND' AND owner_id = $2 ORDER BY ord`,
		t.gameID, userID)
}

func (t *pgTx) queryCards(ctx context.Context, q string, args ...interface{}) ([]*models.Card, error) {
	rows, err := t.tx.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("read cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		c := &models.Card{}
		if err := rows.Scan(&c.ID, &c.Color, &c.Value, &c.Location, &c.Order, &c.OwnerID); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (t *pgTx) SaveCard(ctx context.Context, c *models.Card) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE cards SET location=$1, ord=$2, owner_id=$3 WHERE id=$4 AND game_id=$5`,
		c.Location, c.Order, c.OwnerID, c.ID, t.gameID)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

func (t *pgTx) Destroy(ctx context.Context) error {
	// cards and game_users cascade from the game row.
	_, err := t.tx.Exec(ctx, `DELETE FROM games WHERE id = $1`, t.gameID)
	if err != nil {
		return fmt.Errorf("destroy game: %w", err)
	}
	return nil
}
