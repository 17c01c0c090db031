package service

import (
	"github.com/cypherlabdev/odds-calibration-service/internal/models"
)

// Calibrator is an interface that abstracts event calibration operations
// This allows for easier testing and mocking
type Calibrator interface {
	Calibrate(event *models.EventPrices) (*models.MarketCatalogue, error)
	CalibrateBatch(events []*models.EventPrices) ([]*models.MarketCatalogue, error)
}
