// Package engine turns quoted event prices into frozen market catalogues:
// it strips the bookmaker margin from the quoted markets, fits the sport's
// outcome model against the fair probabilities, and prices every derivable
// market off the fitted model.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-calibration-service/internal/models"
	"github.com/cypherlabdev/odds-calibration-service/pkg/calibrate"
	"github.com/cypherlabdev/odds-calibration-service/pkg/devig"
)

// Quoted market names accepted as calibration inputs.
const (
	MarketWin      = "win"
	MarketTotals   = "totals"
	MarketHandicap = "handicap"
)

// Params holds engine-wide quoting parameters
type Params struct {
	DevigMethod devig.Method
	// MinQuotablePrice floors the probability a catalogue outcome needs to
	// receive a fair price; below it the quote carries the zero sentinel.
	MinQuotableProbability float64
	// MaxCorrectScore bounds the correct-score grid quoted in catalogues.
	MaxCorrectScore int
	// PricePlaces is the decimal precision of quoted fair prices.
	PricePlaces int32
	// HalfScoringFraction scales the fitted rates down to the first-half
	// slice quoted in scoreline catalogues.
	HalfScoringFraction float64
	// SportOverrides adjusts the registered strategy defaults per sport,
	// keyed by lower-cased sport name.
	SportOverrides map[string]calibrate.StrategyOverride
}

// DefaultParams returns the production quoting defaults
func DefaultParams() Params {
	return Params{
		DevigMethod:            devig.MethodShin,
		MinQuotableProbability: 1e-4,
		MaxCorrectScore:        4,
		PricePlaces:            3,
		HalfScoringFraction:    0.5,
	}
}

// Engine calibrates events into market catalogues
type Engine struct {
	params Params
	logger zerolog.Logger
}

// NewEngine creates a new calibration engine
func NewEngine(params Params, logger zerolog.Logger) *Engine {
	return &Engine{
		params: params,
		logger: logger.With().Str("component", "engine").Logger(),
	}
}

// Calibrate fits the event's sport model against its quoted prices and
// returns the frozen catalogue priced from that single fit.
func (e *Engine) Calibrate(event *models.EventPrices) (*models.MarketCatalogue, error) {
	strategy, err := calibrate.StrategyFor(event.Sport)
	if err != nil {
		return nil, err
	}
	if o, ok := e.params.SportOverrides[strings.ToLower(event.Sport)]; ok {
		strategy = strategy.WithOverride(o)
	}

	targets, err := e.targetsFromQuotes(strategy, event.Quoted)
	if err != nil {
		return nil, fmt.Errorf("cannot build targets for event %s: %w", event.EventID, err)
	}

	fitted, err := calibrate.Fit(strategy, targets)
	if err != nil {
		return nil, fmt.Errorf("calibration failed for event %s: %w", event.EventID, err)
	}

	markets, err := e.marketsFor(fitted)
	if err != nil {
		return nil, err
	}

	catalogue := &models.MarketCatalogue{
		ID:          uuid.New(),
		EventID:     event.EventID,
		EventName:   event.EventName,
		Sport:       event.Sport,
		Residual:    fitted.Residual,
		Converged:   fitted.Converged,
		Markets:     markets,
		GeneratedAt: time.Now().UTC(),
	}

	e.logger.Info().
		Str("event_id", event.EventID).
		Str("sport", event.Sport).
		Int("market_count", len(markets)).
		Float64("residual", fitted.Residual).
		Bool("converged", fitted.Converged).
		Msg("calibrated event into catalogue")

	return catalogue, nil
}

// CalibrateBatch calibrates a batch of events, skipping the ones that fail
func (e *Engine) CalibrateBatch(events []*models.EventPrices) ([]*models.MarketCatalogue, error) {
	catalogues := make([]*models.MarketCatalogue, 0, len(events))

	for _, event := range events {
		catalogue, err := e.Calibrate(event)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("event_id", event.EventID).
				Str("sport", event.Sport).
				Msg("failed to calibrate event")
			continue
		}
		catalogues = append(catalogues, catalogue)
	}

	e.logger.Info().
		Int("input_count", len(events)).
		Int("output_count", len(catalogues)).
		Msg("batch calibration complete")

	return catalogues, nil
}

// targetsFromQuotes de-vigs the quoted markets and keeps at most one target
// per kind. Side A's outcome is always the first quoted price; the target
// probability for totals is the over side and for handicaps the side A
// cover.
func (e *Engine) targetsFromQuotes(strategy calibrate.Strategy, quoted []models.QuotedPrice) ([]calibrate.Target, error) {
	var targets []calibrate.Target
	seen := map[calibrate.TargetKind]bool{}

	for _, q := range quoted {
		var kind calibrate.TargetKind
		switch q.Market {
		case MarketWin:
			kind = calibrate.TargetWin
		case MarketTotals:
			kind = calibrate.TargetTotalsOver
		case MarketHandicap:
			kind = calibrate.TargetHandicapCover
		default:
			continue
		}
		if seen[kind] {
			continue
		}
		if strategy.Family == calibrate.ModelRace && kind == calibrate.TargetHandicapCover {
			continue
		}

		odds := make([]float64, len(q.Prices))
		for i, p := range q.Prices {
			odds[i] = p.InexactFloat64()
		}
		fair, err := devig.Remove(e.params.DevigMethod, odds)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", q.Market, err)
		}

		seen[kind] = true
		targets = append(targets, calibrate.Target{
			Kind:        kind,
			Line:        q.Line,
			Probability: fair[0],
		})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no usable quoted markets")
	}
	return targets, nil
}

// fairQuote prices one outcome. Probabilities below the quotable floor get
// the zero-price sentinel instead of an astronomic reciprocal.
func (e *Engine) fairQuote(label string, p float64) models.MarketQuote {
	quote := models.MarketQuote{Label: label, Probability: p}
	if p < e.params.MinQuotableProbability {
		quote.FairPrice = decimal.Zero
		return quote
	}
	quote.FairPrice = decimal.NewFromFloat(1 / p).Round(e.params.PricePlaces)
	return quote
}
