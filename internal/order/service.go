// Package order places orders and settles the loyalty points they redeem
// and earn.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/database"
	"storefront/internal/models"
)

// UserStore is the slice of the user ledger the workflow reads and writes.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdatePoint(ctx context.Context, id primitive.ObjectID, point int64) error
}

type Store interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	Replace(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CartStore removes purchased lines from the user's cart.
type CartStore interface {
	DeleteByUserAndProducts(ctx context.Context, userID primitive.ObjectID, productIDs []string) (int64, error)
}

// Notifier queues the confirmation email. It must not block.
type Notifier interface {
	OrderConfirmation(user *models.User, order *models.Order)
}

// CreateInput is a checkout request. UserID comes from the authenticated
// session, never from the request body.
type CreateInput struct {
	UserID            primitive.ObjectID
	Items             []models.OrderItem
	TotalPrice        *float64
	PointsToRedeem    *float64
	ShippingAddressID string
	ShippingAddress   *AddressInput
}

// UpdateInput is a partial order update. Nil fields are left unchanged.
type UpdateInput struct {
	Status          *string
	Items           []models.OrderItem
	TotalPrice      *float64
	ShippingAddress *models.ShippingSnapshot
}

type Service struct {
	users  UserStore
	orders Store
	cart   CartStore
	mail   Notifier
	tx     database.TxRunner
	lg     *zap.Logger
	now    func() time.Time
}

func NewService(users UserStore, orders Store, cart CartStore, mail Notifier, tx database.TxRunner, lg *zap.Logger) *Service {
	if tx == nil {
		tx = database.Sequential{}
	}
	return &Service{
		users:  users,
		orders: orders,
		cart:   cart,
		mail:   mail,
		tx:     tx,
		lg:     lg,
		now:    time.Now,
	}
}

// CreateOrder places an order for in.UserID. A missing user or an
// unresolvable shipping address fails before anything is written.
//
// The order insert, point update and cart cleanup run inside s.tx; with the
// sequential runner a failure after the insert leaves the order in place.
func (s *Service) CreateOrder(ctx context.Context, in CreateInput) (*models.Order, error) {
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	var requested float64
	if in.PointsToRedeem != nil {
		requested = *in.PointsToRedeem
	}
	total := ItemTotal(in.Items, in.TotalPrice)
	if !validTotal(total) {
		return nil, apperr.BadRequest("order total must be between 0 and %.0f", MaxOrderTotal)
	}
	st := Settle(total, user.Point, requested)

	shipping, err := ResolveShipping(user, in.ShippingAddressID, in.ShippingAddress)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		UserID:          user.ID,
		Items:           in.Items,
		TotalPrice:      st.ItemTotal,
		PayableAmount:   st.PayableAmount,
		PointsRedeemed:  st.UsablePoints,
		PointsEarned:    st.PointsEarned,
		Status:          models.OrderStatusPending,
		StatusHistory:   []models.StatusEntry{{Status: models.OrderStatusPending, Timestamp: now}},
		ShippingAddress: shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Insert(ctx, order); err != nil {
			return err
		}
		if err := s.users.UpdatePoint(ctx, user.ID, st.Balance); err != nil {
			return errors.Wrap(err, "settle points")
		}
		if _, err := s.cart.DeleteByUserAndProducts(ctx, user.ID, productIDs(in.Items)); err != nil {
			return errors.Wrap(err, "clear purchased cart items")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	user.Point = st.Balance

	s.lg.Info("Order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
		zap.Float64("total", order.TotalPrice),
		zap.Float64("payable", order.PayableAmount),
		zap.Int64("points_redeemed", order.PointsRedeemed),
		zap.Int64("points_earned", order.PointsEarned),
	)

	if user.Email != "" && s.mail != nil {
		s.mail.OrderConfirmation(user, order)
	}
	return order, nil
}

// UpdateOrder applies in to the order. A status change prepends a history
// entry; repeating the current status leaves the history untouched.
func (s *Service) UpdateOrder(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*models.Order, error) {
	if in.Status != nil && !models.IsValidOrderStatus(*in.Status) {
		return nil, apperr.BadRequest("invalid order status %q", *in.Status)
	}
	if in.TotalPrice != nil && !validTotal(*in.TotalPrice) {
		return nil, apperr.BadRequest("order total must be between 0 and %.0f", MaxOrderTotal)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if in.Status != nil && *in.Status != order.Status {
		entry := models.StatusEntry{Status: *in.Status, Timestamp: now}
		order.StatusHistory = append([]models.StatusEntry{entry}, order.StatusHistory...)
		order.Status = *in.Status
	}
	if in.Items != nil {
		order.Items = in.Items
	}
	if in.TotalPrice != nil {
		order.TotalPrice = *in.TotalPrice
	}
	if in.ShippingAddress != nil {
		order.ShippingAddress = *in.ShippingAddress
	}
	order.UpdatedAt = now

	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, err
	}
	s.lg.Info("Order updated", zap.String("order_id", id.Hex()), zap.String("status", order.Status))
	return order, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.lg.Info("Order deleted", zap.String("order_id", id.Hex()))
	return nil
}

func productIDs(items []models.OrderItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID != "" {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
