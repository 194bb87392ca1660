// Package discount manages coupon definitions and validates codes presented
// at checkout.
package discount

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

type Store interface {
	Create(ctx context.Context, d *models.Discount) error
	List(ctx context.Context) ([]models.Discount, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error)
	FindByCode(ctx context.Context, code string) (*models.Discount, error)
	Replace(ctx context.Context, d *models.Discount) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Input is the writable part of a discount definition.
type Input struct {
	Code               string
	Description        string
	DiscountType       string
	Value              float64
	MaxUsage           int
	MinOrderValue      float64
	StartDate          time.Time
	EndDate            time.Time
	ApplicableProducts []primitive.ObjectID
	ApplicableUsers    []primitive.ObjectID
	IsActive           bool
}

// Quote is a validated discount, with the amount it takes off orderTotal
// when one was supplied.
type Quote struct {
	Discount       *models.Discount `json:"discount"`
	OrderTotal     *float64         `json:"orderTotal,omitempty"`
	DiscountAmount *float64         `json:"discountAmount,omitempty"`
	FinalTotal     *float64         `json:"finalTotal,omitempty"`
}

type Service struct {
	store Store
	lg    *zap.Logger
	now   func() time.Time
}

func NewService(store Store, lg *zap.Logger) *Service {
	return &Service{store: store, lg: lg, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Discount, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d := &models.Discount{}
	applyInput(d, in)
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	s.lg.Info("Discount created", zap.String("code", d.Code))
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]models.Discount, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	return s.store.FindByID(ctx, id)
}

// Update replaces the definition of id. Usage counters are preserved.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in Input) (*models.Discount, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(d, in)
	if err := s.store.Replace(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.Delete(ctx, id)
}

// Lookup validates code for use now. When orderTotal is given the discount
// is also priced against it.
func (s *Service) Lookup(ctx context.Context, code string, orderTotal *float64) (*Quote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.BadRequest("discount code is required")
	}

	d, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("discount code not found")
		}
		return nil, err
	}

	now := s.now()
	switch {
	case !d.IsActive:
		return nil, apperr.BadRequest("discount is not active")
	case d.StartDate.After(now):
		return nil, apperr.BadRequest("discount not started yet")
	case d.EndDate.Before(now):
		return nil, apperr.BadRequest("discount expired")
	case d.MaxUsage > 0 && d.UsedCount >= d.MaxUsage:
		return nil, apperr.BadRequest("discount usage limit reached")
	}

	q := &Quote{Discount: d}
	if orderTotal == nil {
		return q, nil
	}
	if *orderTotal < d.MinOrderValue {
		return nil, apperr.BadRequest("order total must be at least %.0f to use this discount", d.MinOrderValue)
	}

	amount := Amount(d, *orderTotal)
	final := decimal.NewFromFloat(*orderTotal).Sub(decimal.NewFromFloat(amount)).InexactFloat64()
	q.OrderTotal = orderTotal
	q.DiscountAmount = &amount
	q.FinalTotal = &final
	return q, nil
}

// Amount prices d against total. Percentage discounts take Value percent;
// fixed discounts never exceed total.
func Amount(d *models.Discount, total float64) float64 {
	subtotal := decimal.NewFromFloat(total)
	if subtotal.IsNegative() {
		return 0
	}
	value := decimal.NewFromFloat(d.Value)

	var amount decimal.Decimal
	switch d.DiscountType {
	case models.DiscountPercentage:
		amount = subtotal.Mul(value).Div(hundred)
	default:
		amount = decimal.Min(value, subtotal)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2).InexactFloat64()
}

func validateInput(in Input) error {
	if strings.TrimSpace(in.Code) == "" {
		return apperr.BadRequest("code is required")
	}
	switch in.DiscountType {
	case models.DiscountPercentage:
		if in.Value <= 0 || in.Value > 100 {
			return apperr.BadRequest("percentage value must be in (0, 100]")
		}
	case models.DiscountFixed:
		if in.Value <= 0 {
			return apperr.BadRequest("fixed value must be positive")
		}
	default:
		return apperr.BadRequest("discountType must be %q or %q", models.DiscountPercentage, models.DiscountFixed)
	}
	if in.MaxUsage < 0 || in.MinOrderValue < 0 {
		return apperr.BadRequest("maxUsage and minOrderValue must not be negative")
	}
	if !in.EndDate.After(in.StartDate) {
		return apperr.BadRequest("endDate must be after startDate")
	}
	return nil
}

func applyInput(d *models.Discount, in Input) {
	d.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	d.Description = strings.TrimSpace(in.Description)
	d.DiscountType = in.DiscountType
	d.Value = in.Value
	d.MaxUsage = in.MaxUsage
	d.MinOrderValue = in.MinOrderValue
	d.StartDate = in.StartDate
	d.EndDate = in.EndDate
	d.ApplicableProducts = in.ApplicableProducts
	d.ApplicableUsers = in.ApplicableUsers
	d.IsActive = in.IsActive
	if d.ApplicableProducts == nil {
		d.ApplicableProducts = []primitive.ObjectID{}
	}
	if d.ApplicableUsers == nil {
		d.ApplicableUsers = []primitive.ObjectID{}
	}
}
