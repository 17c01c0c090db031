package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotedPrice is one quoted market for an event as it arrives from the
// price feed. Prices carry the bookmaker margin and are listed in outcome
// order: side A first, then (for three-way markets) the draw, then side B.
type QuotedPrice struct {
	Market string            `json:"market"` // win, totals, handicap
	Line   float64           `json:"line,omitempty"`
	Prices []decimal.Decimal `json:"prices"`
}

// EventPrices is the full set of quoted prices for one event
type EventPrices struct {
	EventID   string        `json:"event_id"`
	EventName string        `json:"event_name"`
	Sport     string        `json:"sport"`
	Quoted    []QuotedPrice `json:"quoted"`
	Timestamp time.Time     `json:"timestamp"`
}

// MarketQuote is one priced outcome in a frozen catalogue. FairPrice is the
// margin-free reciprocal of Probability; a zero FairPrice marks an outcome
// too unlikely to quote.
type MarketQuote struct {
	Label       string          `json:"label"`
	Probability float64         `json:"probability"`
	FairPrice   decimal.Decimal `json:"fair_price"`
}

// Market groups the quotes of one market within a catalogue
type Market struct {
	Name   string        `json:"name"`
	Line   float64       `json:"line,omitempty"`
	Quotes []MarketQuote `json:"quotes"`
}

// MarketCatalogue is the frozen output of one calibration run: every
// derivable market priced from a single fitted model, published atomically.
type MarketCatalogue struct {
	ID          uuid.UUID `json:"id"`
	EventID     string    `json:"event_id"`
	EventName   string    `json:"event_name"`
	Sport       string    `json:"sport"`
	Residual    float64   `json:"residual"`
	Converged   bool      `json:"converged"`
	Markets     []Market  `json:"markets"`
	GeneratedAt time.Time `json:"generated_at"`
}

// FindMarket returns the first market with the given name, or nil.
func (c *MarketCatalogue) FindMarket(name string) *Market {
	for i := range c.Markets {
		if c.Markets[i].Name == name {
			return &c.Markets[i]
		}
	}
	return nil
}

// KafkaQuotedPricesMessage is the batch envelope published by the price feed
type KafkaQuotedPricesMessage struct {
	Events    []EventPrices `json:"events"`
	Timestamp time.Time     `json:"timestamp"`
	BatchID   string        `json:"batch_id"`
}
