// internal/database/memory.go
package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/auth"
	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/models"
)

// Memory is an in-process game store used by tests and by servers started
// without a Postgres backend. Each game carries its own mutex so WithGame
// gives the same one-writer-per-game guarantee as the row lock in the
// Postgres store, just without surviving a restart.
type Memory struct {
	mu    sync.Mutex
	games map[uuid.UUID]*memGame
	users map[uuid.UUID]models.User
}

func NewMemory() *Memory {
	return &Memory{
		games: make(map[uuid.UUID]*memGame),
		users: make(map[uuid.UUID]models.User),
	}
}

var _ game.Store = (*Memory)(nil)

type memGame struct {
	mu    sync.Mutex
	game  models.Game
	users []models.GameUser
	cards []models.Card
	gone  bool
}

func (s *Memory) CreateGame(ctx context.Context, g *models.Game, host *models.GameUser, deck []*models.Card) error {
	mg := &memGame{game: *g}
	mg.users = append(mg.users, *host)
	for _, c := range deck {
		mg.cards = append(mg.cards, *c)
	}
	s.mu.Lock()
	s.games[g.ID] = mg
	s.mu.Unlock()
	return nil
}

func (s *Memory) WithGame(ctx context.Context, gameID uuid.UUID, fn func(tx game.Tx) error) error {
	s.mu.Lock()
	mg, ok := s.games[gameID]
	s.mu.Unlock()
	if !ok {
		return game.ErrGameNotFound
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	if mg.gone {
		return game.ErrGameNotFound
	}

	// Work on a copy; swap it in only if fn succeeds so a rule violation
	// rolls everything back, exactly like the Postgres transaction.
	tx := &memTx{
		game:  mg.game,
		users: append([]models.GameUser(nil), mg.users...),
		cards: append([]models.Card(nil), mg.cards...),
	}
	if err := fn(tx); err != nil {
		return err
	}

	if tx.destroyed {
		mg.gone = true
		s.mu.Lock()
		delete(s.games, gameID)
		s.mu.Unlock()
		return nil
	}
	mg.game = tx.game
	mg.users = tx.users
	mg.cards = tx.cards
	return nil
}

func (s *Memory) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	hash, err := auth.CreateHash(user.Password, auth.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("email already exists")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Memory) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return &u, nil
}

func (s *Memory) AuthenticateUser(ctx context.Context, email, password string) (string, error) {
	s.mu.Lock()
	var found *models.User
	for id := range s.users {
		u := s.users[id]
		if u.Email == email {
			found = &u
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		return "", fmt.Errorf("user not found")
	}
	match, err := auth.ComparePasswordAndHash(password, found.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}
	return auth.CreateJWT(found.ID.String())
}

type memTx struct {
	game      models.Game
	users     []models.GameUser
	cards     []models.Card
	destroyed bool
}

func (t *memTx) Game(ctx context.Context) (*models.Game, error) {
	g := t.game
	return &g, nil
}

func (t *memTx) SaveGame(ctx context.Context, g *models.Game) error {
	t.game = *g
	return nil
}

func (t *memTx) Users(ctx context.Context) ([]*models.GameUser, error) {
	out := make([]*models.GameUser, 0, len(t.users))
	for i := range t.users {
		u := t.users[i]
		out = append(out, &u)
	}
	sortUsers(out)
	return out, nil
}

func (t *memTx) AddUser(ctx context.Context, u *models.GameUser) error {
	t.users = append(t.users, *u)
	return nil
}

func (t *memTx) SaveUser(ctx context.Context, u *models.GameUser) error {
	for i := range t.users {
		if t.users[i].UserID == u.UserID {
			t.users[i] = *u
			return nil
		}
	}
	return game.ErrNotInGame
}

func (t *memTx) RemoveUser(ctx context.Context, userID uuid.UUID) error {
	for i := range t.users {
		if t.users[i].UserID == userID {
			t.users = append(t.users[:i], t.users[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *memTx) Cards(ctx context.Context) ([]*models.Card, error) {
	out := make([]*models.Card, 0, len(t.cards))
	for i := range t.cards {
		c := t.cards[i]
		out = append(out, &c)
	}
	sortCards(out)
	return out, nil
}

func (t *memTx) Zone(ctx context.Context, loc models.Location) ([]*models.Card, error) {
	var out []*models.Card
	for i := range t.cards {
		if t.cards[i].Location == loc {
			c := t.cards[i]
			out = append(out, &c)
		}
	}
	sortCards(out)
	return out, nil
}

func (t *memTx) Hand(ctx context.Context, userID uuid.UUID) ([]*models.Card, error) {
	var out []*models.Card
	for i := range t.cards {
		c := t.cards[i]
		if c.Location == models.LocationHand && c.OwnerID != nil && *c.OwnerID == userID {
			out = append(out, &c)
		}
	}
	sortCards(out)
	return out, nil
}

func (t *memTx) SaveCard(ctx context.Context, c *models.Card) error {
	for i := range t.cards {
		if t.cards[i].ID == c.ID {
			t.cards[i] = *c
			return nil
		}
	}
	return game.ErrCardNotInHand
}

func (t *memTx) Destroy(ctx context.Context) error {
	t.destroyed = true
	return nil
}

func sortUsers(users []*models.GameUser) {
	sort.Slice(users, func(i, j int) bool { return users[i].SeatOrder < users[j].SeatOrder })
}

func sortCards(cards []*models.Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].Order < cards[j].Order })
}
