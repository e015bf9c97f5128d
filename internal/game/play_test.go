// internal/game/play_test.go
package game

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unoarcade/uno-service/internal/models"
)

func card(color models.CardColor, value models.CardValue) *models.Card {
	return &models.Card{ID: uuid.New(), Color: color, Value: value}
}

func TestCheckLegal(t *testing.T) {
	red := models.ColorRed
	tests := []struct {
		name      string
		card      *models.Card
		top       *models.Card
		wildColor *models.CardColor
		wantErr   error
	}{
		{"empty pile accepts anything", card(models.ColorRed, models.ValueFive), nil, nil, nil},
		{"same color", card(models.ColorRed, models.ValueFive), card(models.ColorRed, models.ValueNine), nil, nil},
		{"same value", card(models.ColorBlue, models.ValueFive), card(models.ColorRed, models.ValueFive), nil, nil},
		{"wild always plays", card(models.ColorBlack, models.ValueWild), card(models.ColorRed, models.ValueFive), nil, nil},
		{"draw four always plays", card(models.ColorBlack, models.ValueDrawFour), card(models.ColorGreen, models.ValueTwo), nil, nil},
		{"color and value mismatch", card(models.ColorBlue, models.ValueTwo), card(models.ColorRed, models.ValueFive), nil, ErrIllegalCard},
		{"declared color stands in for black top", card(models.ColorRed, models.ValueFive), card(models.ColorBlack, models.ValueWild), &red, nil},
		{"wrong color on declared wild", card(models.ColorBlue, models.ValueFive), card(models.ColorBlack, models.ValueWild), &red, ErrIllegalCard},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checkLegal(tc.card, tc.top, tc.wildColor)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func seatedUsers(n int) []*models.GameUser {
	users := make([]*models.GameUser, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, &models.GameUser{
			UserID:    uuid.New(),
			SeatOrder: i,
			State:     models.StatePlaying,
		})
	}
	return users
}

func TestApplyEffectNumeralAdvancesOne(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(3)

	evs, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorRed, models.ValueFive), users)
	require.NoError(t, err)
	assert.Empty(t, evs)
	assert.Equal(t, 1, tx.game.CurrentSeat)
}

func TestApplyEffectSkip(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(3)

	evs, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorRed, models.ValueSkip), users)
	require.NoError(t, err)
	assert.Equal(t, 2, tx.game.CurrentSeat)
	require.Len(t, evs, 1)
	assert.Equal(t, EventSkippedTurn, evs[0].Type)
}

func TestApplyEffectReverse(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(3)
	tx.game.CurrentSeat = 1

	evs, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorRed, models.ValueReverse), users)
	require.NoError(t, err)
	assert.Equal(t, models.CounterClockwise, tx.game.Direction)
	assert.Equal(t, 0, tx.game.CurrentSeat)
	require.Len(t, evs, 1)
	assert.Equal(t, EventReversedTurns, evs[0].Type)
}

func TestApplyEffectReverseWrapsBackwards(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(3)
	tx.game.CurrentSeat = 0

	_, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorRed, models.ValueReverse), users)
	require.NoError(t, err)
	assert.Equal(t, 2, tx.game.CurrentSeat)
}

func TestApplyEffectReverseHeadsUpActsAsSkip(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(2)

	_, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorRed, models.ValueReverse), users)
	require.NoError(t, err)
	assert.Equal(t, models.CounterClockwise, tx.game.Direction)
	// Same player acts again.
	assert.Equal(t, 0, tx.game.CurrentSeat)
}

func TestApplyEffectDrawTwo(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(3)
	tx.users = users

	evs, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorRed, models.ValueDrawTwo), users)
	require.NoError(t, err)

	// Next player drew two and was skipped.
	hand, _ := tx.Hand(context.Background(), users[1].UserID)
	assert.Len(t, hand, 2)
	assert.Equal(t, 2, tx.game.CurrentSeat)

	require.Len(t, evs, 3)
	assert.Equal(t, EventDealtCard, evs[0].Type)
	assert.Equal(t, EventDealtCard, evs[1].Type)
	assert.Equal(t, EventSkippedTurn, evs[2].Type)
	require.NotNil(t, evs[0].UserID)
	assert.Equal(t, users[1].UserID, *evs[0].UserID)
}

func TestApplyEffectDrawFourTargetsByDirection(t *testing.T) {
	tx := startedGameTx()
	users := seatedUsers(4)
	tx.users = users
	tx.game.CurrentSeat = 0
	tx.game.Direction = models.CounterClockwise

	evs, err := applyEffect(context.Background(), tx, tx.game, card(models.ColorBlack, models.ValueDrawFour), users)
	require.NoError(t, err)

	// Counterclockwise from seat 0 wraps to seat 3.
	hand, _ := tx.Hand(context.Background(), users[3].UserID)
	assert.Len(t, hand, 4)
	assert.Equal(t, 2, tx.game.CurrentSeat)
	assert.Len(t, evs, 5)
}
