package inventory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository"
)

// Store is the persistence the inventory service needs.
type Store interface {
	repository.InventoryRepository
	repository.BikeRepository
}

// Settings are the editable inventory thresholds of a bike.
type Settings struct {
	MinimumStock int    `json:"minimum_stock" binding:"gte=0"`
	MaximumStock int    `json:"maximum_stock" binding:"gte=1"`
	ReorderPoint int    `json:"reorder_point" binding:"gte=0"`
	Notes        string `json:"notes"`
}

// Service manages per-bike stock thresholds and restocking.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new inventory service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Get returns the bike's inventory view, creating default settings on first access.
func (s *Service) Get(ctx context.Context, bikeID string) (*models.InventoryView, error) {
	bike, err := s.store.GetBike(ctx, bikeID)
	if err != nil {
		return nil, err
	}

	inventory, err := s.store.GetInventory(ctx, bikeID)
	if errors.Is(err, models.ErrNotFound) {
		defaults := models.DefaultInventory(bikeID)
		if err := s.store.SaveInventory(ctx, &defaults); err != nil {
			return nil, fmt.Errorf("create default inventory for bike %s: %w", bikeID, err)
		}
		s.logger.Debug("default inventory created", zap.String("bike_id", bikeID))
		inventory = &defaults
	} else if err != nil {
		return nil, err
	}

	view := models.NewInventoryView(*inventory, *bike)
	return &view, nil
}

// Update validates and stores new thresholds. last_restocked is preserved.
func (s *Service) Update(ctx context.Context, bikeID string, settings Settings) (*models.InventoryView, error) {
	current, err := s.Get(ctx, bikeID)
	if err != nil {
		return nil, err
	}

	inventory := current.Inventory
	inventory.MinimumStock = settings.MinimumStock
	inventory.MaximumStock = settings.MaximumStock
	inventory.ReorderPoint = settings.ReorderPoint
	inventory.Notes = strings.TrimSpace(settings.Notes)
	if err := inventory.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveInventory(ctx, &inventory); err != nil {
		return nil, err
	}

	s.logger.Info("inventory settings updated",
		zap.String("bike_id", bikeID),
		zap.Int("minimum_stock", inventory.MinimumStock),
		zap.Int("maximum_stock", inventory.MaximumStock),
		zap.Int("reorder_point", inventory.ReorderPoint))

	view := models.NewInventoryView(inventory, current.Bike)
	return &view, nil
}

// Restock adds quantity units to the bike's stock and stamps last_restocked.
// The store rejects a quantity that would take the stock past models.MaxStock.
func (s *Service) Restock(ctx context.Context, bikeID string, quantity int) (*models.InventoryView, error) {
	if quantity < 1 {
		return nil, models.Invalid("quantity", "quantity must be greater than 0")
	}
	if quantity > models.MaxStock {
		return nil, models.Invalid("quantity", "must be at most %d", models.MaxStock)
	}

	bike, inventory, err := s.store.Restock(ctx, bikeID, quantity, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info("bike restocked",
		zap.String("bike_id", bikeID),
		zap.Int("added", quantity),
		zap.Int("stock", bike.StockQuantity))

	view := models.NewInventoryView(*inventory, *bike)
	return &view, nil
}

// ReorderList returns every bike at or below its reorder point, lowest stock
// first. Bikes without explicit settings are evaluated against the defaults.
func (s *Service) ReorderList(ctx context.Context) ([]models.InventoryView, error) {
	views, err := s.Views(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.InventoryView, 0)
	for _, view := range views {
		if view.NeedsReorder {
			out = append(out, view)
		}
	}
	slices.SortStableFunc(out, func(a, b models.InventoryView) int {
		return cmp.Compare(a.CurrentStock, b.CurrentStock)
	})
	return out, nil
}

// Views returns the inventory view of every bike in catalog order.
func (s *Service) Views(ctx context.Context) ([]models.InventoryView, error) {
	bikes, err := s.store.ListBikes(ctx, models.BikeFilter{})
	if err != nil {
		return nil, err
	}
	inventories, err := s.store.ListInventories(ctx)
	if err != nil {
		return nil, err
	}

	byBike := make(map[string]models.Inventory, len(inventories))
	for _, inv := range inventories {
		byBike[inv.BikeID] = inv
	}

	views := make([]models.InventoryView, 0, len(bikes))
	for _, bike := range bikes {
		inv, ok := byBike[bike.ID]
		if !ok {
			inv = models.DefaultInventory(bike.ID)
		}
		views = append(views, models.NewInventoryView(inv, bike))
	}
	return views, nil
}
