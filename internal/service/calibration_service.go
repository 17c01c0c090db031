package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-calibration-service/internal/models"
)

// CalibrationService orchestrates event calibration with catalogue caching
type CalibrationService struct {
	calibrator Calibrator
	cache      Cache
	logger     zerolog.Logger
}

// NewCalibrationService creates a new calibration service
func NewCalibrationService(
	calibrator Calibrator,
	cache Cache,
	logger zerolog.Logger,
) *CalibrationService {
	return &CalibrationService{
		calibrator: calibrator,
		cache:      cache,
		logger:     logger.With().Str("component", "calibration_service").Logger(),
	}
}

// GetCatalogue retrieves the frozen catalogue for an event from cache
func (s *CalibrationService) GetCatalogue(ctx context.Context, eventID string) (*models.MarketCatalogue, error) {
	catalogue, err := s.cache.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("catalogue not found for event=%s: %w", eventID, err)
	}

	s.logger.Debug().
		Str("event_id", eventID).
		Str("catalogue_id", catalogue.ID.String()).
		Int("market_count", len(catalogue.Markets)).
		Msg("cache hit for catalogue")

	return catalogue, nil
}

// GetMarket retrieves a single market from an event's cached catalogue
func (s *CalibrationService) GetMarket(ctx context.Context, eventID, market string) (*models.Market, error) {
	catalogue, err := s.GetCatalogue(ctx, eventID)
	if err != nil {
		return nil, err
	}

	found := catalogue.FindMarket(market)
	if found == nil {
		return nil, fmt.Errorf("market %s not in catalogue for event=%s", market, eventID)
	}
	return found, nil
}

// CalibrateEvent calibrates one event and caches the resulting catalogue
func (s *CalibrationService) CalibrateEvent(ctx context.Context, event *models.EventPrices) (*models.MarketCatalogue, error) {
	catalogue, err := s.calibrator.Calibrate(event)
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}

	// Cache failures do not fail the request; the catalogue is still usable.
	if err := s.cache.Set(ctx, catalogue); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_id", catalogue.EventID).
			Msg("failed to cache catalogue")
	}

	s.logger.Info().
		Str("event_id", catalogue.EventID).
		Str("sport", catalogue.Sport).
		Int("market_count", len(catalogue.Markets)).
		Float64("residual", catalogue.Residual).
		Bool("converged", catalogue.Converged).
		Msg("calibrated and cached catalogue")

	return catalogue, nil
}

// CalibrateBatch calibrates a batch of events and caches the catalogues
func (s *CalibrationService) CalibrateBatch(ctx context.Context, events []*models.EventPrices) ([]*models.MarketCatalogue, error) {
	if len(events) == 0 {
		return nil, nil
	}

	catalogues, err := s.calibrator.CalibrateBatch(events)
	if err != nil {
		return nil, fmt.Errorf("batch calibration failed: %w", err)
	}

	if err := s.cache.SetBatch(ctx, catalogues); err != nil {
		s.logger.Warn().
			Err(err).
			Int("count", len(catalogues)).
			Msg("failed to cache batch of catalogues")
	}

	s.logger.Info().
		Int("input_count", len(events)).
		Int("output_count", len(catalogues)).
		Msg("calibrated and cached batch")

	return catalogues, nil
}
