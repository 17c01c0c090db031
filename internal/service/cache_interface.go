package service

import (
	"context"

	"github.com/cypherlabdev/odds-calibration-service/internal/models"
)

// Cache is an interface that abstracts catalogue cache operations
// This allows for easier testing and mocking
type Cache interface {
	Set(ctx context.Context, catalogue *models.MarketCatalogue) error
	Get(ctx context.Context, eventID string) (*models.MarketCatalogue, error)
	SetBatch(ctx context.Context, catalogues []*models.MarketCatalogue) error
	Ping(ctx context.Context) error
	Close() error
}
