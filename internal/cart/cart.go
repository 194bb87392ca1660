// Package cart manages pending line items per user.
package cart

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type Store interface {
	Add(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	Update(ctx context.Context, id primitive.ObjectID, patch repository.CartPatch) (*models.CartItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ReplaceForUser(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) ([]models.CartItem, error)
}

// ItemInput is a line as sent by the storefront.
type ItemInput struct {
	ProductID   string
	ProductName string
	ShopName    string
	Price       float64
	Quantity    int
	Image       string
	Status      string
}

type Service struct {
	store Store
	lg    *zap.Logger
}

func NewService(store Store, lg *zap.Logger) *Service {
	return &Service{store: store, lg: lg}
}

// Add puts a line in the user's cart. Adding a product already present
// increments its quantity.
func (s *Service) Add(ctx context.Context, userID primitive.ObjectID, in ItemInput) (*models.CartItem, error) {
	item, err := toItem(in)
	if err != nil {
		return nil, err
	}
	item.UserID = &userID
	return s.store.Add(ctx, &item)
}

func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id primitive.ObjectID) (*models.CartItem, error) {
	return s.owned(ctx, userID, id, "view")
}

func (s *Service) Update(ctx context.Context, userID, id primitive.ObjectID, patch repository.CartPatch) (*models.CartItem, error) {
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, apperr.BadRequest("quantity must be at least 1")
	}
	if _, err := s.owned(ctx, userID, id, "update"); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, patch)
}

func (s *Service) Remove(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, userID, id, "delete"); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Sync replaces the user's cart with the lines kept locally while signed out.
// Lines for the same product are merged and their quantities summed, the
// first line's details winning.
func (s *Service) Sync(ctx context.Context, userID primitive.ObjectID, in []ItemInput) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0, len(in))
	seen := make(map[string]int, len(in))
	for _, line := range in {
		item, err := toItem(line)
		if err != nil {
			return nil, err
		}
		if i, ok := seen[item.ProductID]; ok {
			items[i].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(items)
		items = append(items, item)
	}
	synced, err := s.store.ReplaceForUser(ctx, userID, items)
	if err != nil {
		return nil, err
	}
	s.lg.Info("Cart synced", zap.String("user_id", userID.Hex()), zap.Int("items", len(synced)))
	return synced, nil
}

func (s *Service) owned(ctx context.Context, userID, id primitive.ObjectID, action string) (*models.CartItem, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID == nil || *item.UserID != userID {
		return nil, apperr.Forbidden("you can only %s your own cart", action)
	}
	return item, nil
}

func toItem(in ItemInput) (models.CartItem, error) {
	if strings.TrimSpace(in.ProductName) == "" {
		return models.CartItem{}, apperr.BadRequest("productName is required")
	}
	if in.Quantity < 1 {
		return models.CartItem{}, apperr.BadRequest("quantity must be at least 1")
	}
	if in.Price < 0 {
		return models.CartItem{}, apperr.BadRequest("price must not be negative")
	}
	return models.CartItem{
		ProductID:   strings.TrimSpace(in.ProductID),
		ProductName: strings.TrimSpace(in.ProductName),
		ShopName:    strings.TrimSpace(in.ShopName),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Image:       in.Image,
		Status:      in.Status,
	}, nil
}
