// internal/game/catalog.go
package game

import (
	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/models"
)

// DeckSize is the number of cards every game is created with.
const DeckSize = 52

// HandSize is the number of cards dealt to each player at game start.
const HandSize = 7

// coloredValues is the fixed per-color composition of the deck: one card of
// each numeral 1-9 plus one of each colored action symbol.
var coloredValues = []models.CardValue{
	models.ValueOne, models.ValueTwo, models.ValueThree,
	models.ValueFour, models.ValueFive, models.ValueSix,
	models.ValueSeven, models.ValueEight, models.ValueNine,
	models.ValueSkip, models.ValueReverse, models.ValueDrawTwo,
}

// NewDeck builds the full card set for a fresh game. Every card starts in the
// deck zone; Order is the catalog index until the first shuffle replaces it.
func NewDeck() []*models.Card {
	deck := make([]*models.Card, 0, DeckSize)
	for _, color := range models.ChoosableColors {
		for _, value := range coloredValues {
			deck = append(deck, &models.Card{
				ID:       uuid.New(),
				Color:    color,
				Value:    value,
				Location: models.LocationDeck,
				Order:    len(deck),
			})
		}
	}
	for i := 0; i < 2; i++ {
		deck = append(deck, &models.Card{
			ID:       uuid.New(),
			Color:    models.ColorBlack,
			Value:    models.ValueWild,
			Location: models.LocationDeck,
			Order:    len(deck),
		})
		deck = append(deck, &models.Card{
			ID:       uuid.New(),
			Color:    models.ColorBlack,
			Value:    models.ValueDrawFour,
			Location: models.LocationDeck,
			Order:    len(deck),
		})
	}
	return deck
}
