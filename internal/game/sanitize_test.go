// internal/game/sanitize_test.go
package game_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/models"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestSanitizeHidesForeignCards(t *testing.T) {
	viewer, rival := uuid.New(), uuid.New()
	st := &models.GameState{
		Started: true,
		Cards: []*models.Card{
			{ID: uuid.New(), Color: models.ColorRed, Value: models.ValueFive, Location: models.LocationHand, Order: 1, OwnerID: ptr(viewer)},
			{ID: uuid.New(), Color: models.ColorBlue, Value: models.ValueNine, Location: models.LocationHand, Order: 1, OwnerID: ptr(rival)},
			{ID: uuid.New(), Color: models.ColorGreen, Value: models.ValueSkip, Location: models.LocationDeck, Order: 0},
		},
	}

	out := game.Sanitize(st, viewer)
	require.Len(t, out.Cards, 3)

	own := out.Cards[0]
	require.NotNil(t, own.ID)
	assert.Equal(t, models.ColorRed, own.Color)
	assert.Equal(t, models.ValueFive, own.Value)

	for _, sc := range out.Cards[1:] {
		assert.Nil(t, sc.ID, "hidden cards carry no identity")
		assert.Empty(t, sc.Color)
		assert.Empty(t, sc.Value)
	}

	// Zone bookkeeping survives for every card.
	assert.Equal(t, models.LocationHand, out.Cards[1].Location)
	assert.Equal(t, models.LocationDeck, out.Cards[2].Location)
	require.NotNil(t, out.Cards[1].OwnerID)
	assert.Equal(t, rival, *out.Cards[1].OwnerID)
}

func TestSanitizeRevealsOnlyTopDiscard(t *testing.T) {
	viewer := uuid.New()
	buried := &models.Card{ID: uuid.New(), Color: models.ColorRed, Value: models.ValueTwo, Location: models.LocationDiscard, Order: 0}
	top := &models.Card{ID: uuid.New(), Color: models.ColorBlue, Value: models.ValueSeven, Location: models.LocationDiscard, Order: 1}
	st := &models.GameState{
		Started: true,
		Cards:   []*models.Card{buried, top},
	}

	out := game.Sanitize(st, viewer)
	require.Len(t, out.Cards, 2)

	assert.Nil(t, out.Cards[0].ID, "buried discard stays face-down")
	require.NotNil(t, out.Cards[1].ID)
	assert.Equal(t, top.ID, *out.Cards[1].ID)
	assert.Equal(t, models.ColorBlue, out.Cards[1].Color)
}

func TestSanitizePreservesGameFields(t *testing.T) {
	red := models.ColorRed
	st := &models.GameState{
		Started:   true,
		Ended:     true,
		WildColor: &red,
		Users: []*models.GameUser{
			{UserID: uuid.New(), Username: "a", SeatOrder: 0, State: models.StateWon, IsHost: true},
		},
	}

	out := game.Sanitize(st, uuid.New())
	assert.True(t, out.Started)
	assert.True(t, out.Ended)
	require.NotNil(t, out.WildColor)
	assert.Equal(t, models.ColorRed, *out.WildColor)
	require.Len(t, out.Users, 1)
	assert.Equal(t, "a", out.Users[0].Username)
}

func TestSanitizeDiffersPerViewer(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	st := &models.GameState{
		Started: true,
		Cards: []*models.Card{
			{ID: uuid.New(), Color: models.ColorRed, Value: models.ValueOne, Location: models.LocationHand, Order: 1, OwnerID: ptr(a)},
			{ID: uuid.New(), Color: models.ColorBlue, Value: models.ValueTwo, Location: models.LocationHand, Order: 1, OwnerID: ptr(b)},
		},
	}

	forA := game.Sanitize(st, a)
	forB := game.Sanitize(st, b)

	assert.NotNil(t, forA.Cards[0].ID)
	assert.Nil(t, forA.Cards[1].ID)
	assert.Nil(t, forB.Cards[0].ID)
	assert.NotNil(t, forB.Cards[1].ID)
}
