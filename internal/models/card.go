package models

import "github.com/google/uuid"

// CardColor is one of the four playable colors, or BLACK for wild cards.
type CardColor string

const (
	ColorRed    CardColor = "RED"
	ColorBlue   CardColor = "BLUE"
	ColorGreen  CardColor = "GREEN"
	ColorYellow CardColor = "YELLOW"
	ColorBlack  CardColor = "BLACK"
)

// ChoosableColors are the colors a player may name when playing a wild card.
var ChoosableColors = []CardColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// Choosable reports whether c is a color a wild card may be declared as.
func (c CardColor) Choosable() bool {
	for _, cc := range ChoosableColors {
		if c == cc {
			return true
		}
	}
	return false
}

// CardValue is the face value of a card: a numeral or an action symbol.
type CardValue string

const (
	ValueOne      CardValue = "ONE"
	ValueTwo      CardValue = "TWO"
	ValueThree    CardValue = "THREE"
	ValueFour     CardValue = "FOUR"
	ValueFive     CardValue = "FIVE"
	ValueSix      CardValue = "SIX"
	ValueSeven    CardValue = "SEVEN"
	ValueEight    CardValue = "EIGHT"
	ValueNine     CardValue = "NINE"
	ValueSkip     CardValue = "SKIP"
	ValueReverse  CardValue = "REVERSE"
	ValueDrawTwo  CardValue = "DRAW_TWO"
	ValueDrawFour CardValue = "DRAW_FOUR"
	ValueWild     CardValue = "WILD"
)

// Location is the zone a card currently occupies. The three zones partition
// every card in a game.
type Location string

const (
	LocationDeck    Location = "DECK"
	LocationHand    Location = "HAND"
	LocationDiscard Location = "DISCARD"
)

// Card is a single card row. Order is zone-local: draw order for the deck,
// recency for the discard pile (larger = more recent), stable display order
// for a hand. OwnerID is set only while the card sits in a hand.
type Card struct {
	ID       uuid.UUID  `json:"card_id"`
	Color    CardColor  `json:"color"`
	Value    CardValue  `json:"value"`
	Location Location   `json:"location"`
	Order    int        `json:"order"`
	OwnerID  *uuid.UUID `json:"user_id,omitempty"`
}

// Wild reports whether the card is a BLACK card requiring a declared color.
func (c *Card) Wild() bool {
	return c.Color == ColorBlack
}
