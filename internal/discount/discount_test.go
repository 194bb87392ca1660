package discount

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type fakeStore struct {
	byCode map[string]*models.Discount
}

func (f *fakeStore) Create(_ context.Context, d *models.Discount) error {
	if _, ok := f.byCode[d.Code]; ok {
		return apperr.Conflict("discount code %s already exists", d.Code)
	}
	d.ID = primitive.NewObjectID()
	f.byCode[d.Code] = d
	return nil
}

func (f *fakeStore) List(context.Context) ([]models.Discount, error) { return nil, nil }

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Discount, error) {
	for _, d := range f.byCode {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("discount %s not found", id.Hex())
}

func (f *fakeStore) FindByCode(_ context.Context, code string) (*models.Discount, error) {
	d, ok := f.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, apperr.NotFound("discount %s not found", code)
	}
	return d, nil
}

func (f *fakeStore) Replace(_ context.Context, d *models.Discount) error {
	f.byCode[d.Code] = d
	return nil
}

func (f *fakeStore) Delete(context.Context, primitive.ObjectID) error { return nil }

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(discounts ...*models.Discount) *Service {
	store := &fakeStore{byCode: map[string]*models.Discount{}}
	for _, d := range discounts {
		store.byCode[d.Code] = d
	}
	s := NewService(store, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func activeDiscount(code, typ string, value float64) *models.Discount {
	return &models.Discount{
		ID:           primitive.NewObjectID(),
		Code:         code,
		DiscountType: typ,
		Value:        value,
		StartDate:    now.AddDate(0, -1, 0),
		EndDate:      now.AddDate(0, 1, 0),
		IsActive:     true,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestLookupNormalizesCode(t *testing.T) {
	s := newTestService(activeDiscount("SUMMER10", models.DiscountPercentage, 10))

	q, err := s.Lookup(context.Background(), " summer10 ", nil)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", q.Discount.Code)
	assert.Nil(t, q.DiscountAmount)
}

func TestLookupRejections(t *testing.T) {
	notStarted := activeDiscount("SOON", models.DiscountFixed, 5)
	notStarted.StartDate = now.Add(time.Hour)
	expired := activeDiscount("OLD", models.DiscountFixed, 5)
	expired.EndDate = now.Add(-time.Hour)
	inactive := activeDiscount("OFF", models.DiscountFixed, 5)
	inactive.IsActive = false
	used := activeDiscount("USED", models.DiscountFixed, 5)
	used.MaxUsage, used.UsedCount = 3, 3

	s := newTestService(notStarted, expired, inactive, used)

	tests := []struct {
		code string
		kind apperr.Kind
		msg  string
	}{
		{"SOON", apperr.KindBadRequest, "discount not started yet"},
		{"OLD", apperr.KindBadRequest, "discount expired"},
		{"OFF", apperr.KindBadRequest, "discount is not active"},
		{"USED", apperr.KindBadRequest, "discount usage limit reached"},
		{"NOPE", apperr.KindNotFound, "discount code not found"},
		{"", apperr.KindBadRequest, "discount code is required"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := s.Lookup(context.Background(), tt.code, nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.msg, apperr.PublicMessage(err))
		})
	}
}

func TestLookupPricesOrderTotal(t *testing.T) {
	pct := activeDiscount("PCT", models.DiscountPercentage, 15)
	fixed := activeDiscount("FIX", models.DiscountFixed, 50_000)
	fixed.MinOrderValue = 20_000
	s := newTestService(pct, fixed)

	q, err := s.Lookup(context.Background(), "PCT", floatPtr(200_000))
	require.NoError(t, err)
	assert.Equal(t, 30_000.0, *q.DiscountAmount)
	assert.Equal(t, 170_000.0, *q.FinalTotal)

	q, err = s.Lookup(context.Background(), "FIX", floatPtr(30_000))
	require.NoError(t, err)
	assert.Equal(t, 30_000.0, *q.DiscountAmount)
	assert.Equal(t, 0.0, *q.FinalTotal)

	_, err = s.Lookup(context.Background(), "FIX", floatPtr(10_000))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestCreateValidatesAndUppercases(t *testing.T) {
	s := newTestService()
	in := Input{
		Code:         "welcome",
		DiscountType: models.DiscountPercentage,
		Value:        20,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, 7),
		IsActive:     true,
	}

	d, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", d.Code)
	assert.NotNil(t, d.ApplicableProducts)

	bad := in
	bad.Value = 120
	_, err = s.Create(context.Background(), bad)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	bad = in
	bad.DiscountType = "bogo"
	_, err = s.Create(context.Background(), bad)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	bad = in
	bad.EndDate = in.StartDate
	_, err = s.Create(context.Background(), bad)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestUpdateKeepsUsage(t *testing.T) {
	d := activeDiscount("KEEP", models.DiscountFixed, 10)
	d.UsedCount = 4
	s := newTestService(d)

	updated, err := s.Update(context.Background(), d.ID, Input{
		Code:         "KEEP",
		DiscountType: models.DiscountFixed,
		Value:        25,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.Value)
	assert.Equal(t, 4, updated.UsedCount)
}
