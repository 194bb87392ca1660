package order

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/models"
)

func TestSettle(t *testing.T) {
	tests := []struct {
		name        string
		total       float64
		current     int64
		requested   float64
		wantUsable  int64
		wantPayable float64
		wantEarned  int64
		wantBalance int64
	}{
		{"capped by balance", 100_000, 50_000, 80_000, 50_000, 50_000, 5_000, 5_000},
		{"capped by request", 100_000, 50_000, 20_000, 20_000, 80_000, 8_000, 38_000},
		{"capped by total", 1_500.75, 10_000, 10_000, 1_500, 0.75, 0, 8_500},
		{"negative request clamps to zero", 1_000, 500, -30, 0, 1_000, 100, 600},
		{"fractional request truncates", 1_000, 500, 99.9, 99, 901, 90, 491},
		{"no points held", 250, 0, 100, 0, 250, 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Settle(tt.total, tt.current, tt.requested)
			assert.Equal(t, tt.wantUsable, st.UsablePoints)
			assert.InDelta(t, tt.wantPayable, st.PayableAmount, 1e-9)
			assert.Equal(t, tt.wantEarned, st.PointsEarned)
			assert.Equal(t, tt.wantBalance, st.Balance)
		})
	}
}

func TestSettleBounds(t *testing.T) {
	for _, total := range []float64{0, 0.5, 1, 99.99, 1_000, 123_456.78} {
		for _, current := range []int64{0, 1, 50, 10_000, 1_000_000} {
			for _, requested := range []float64{-5, 0, 0.4, 7, 500, 2_000_000} {
				st := Settle(total, current, requested)

				assert.GreaterOrEqual(t, st.UsablePoints, int64(0))
				assert.LessOrEqual(t, st.UsablePoints, current)
				assert.LessOrEqual(t, float64(st.UsablePoints), total)
				assert.GreaterOrEqual(t, st.PayableAmount, 0.0)
				assert.GreaterOrEqual(t, st.PointsEarned, int64(0))
				assert.Equal(t, current-st.UsablePoints+st.PointsEarned, st.Balance)
			}
		}
	}
}

func TestSettleExtremeInputs(t *testing.T) {
	tests := []struct {
		name       string
		total      float64
		current    int64
		requested  float64
		wantUsable int64
	}{
		{"huge total", 1e20, 100, 50, 50},
		{"infinite request", 1_000, 300, math.Inf(1), 300},
		{"NaN request", 1_000, 300, math.NaN(), 0},
		{"max balance", 1e15, math.MaxInt64, 0, 0},
		{"negative balance", 1_000, -20, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Settle(tt.total, tt.current, tt.requested)
			assert.Equal(t, tt.wantUsable, st.UsablePoints)
			assert.GreaterOrEqual(t, st.PointsEarned, int64(0))
			assert.GreaterOrEqual(t, st.PayableAmount, 0.0)
			if tt.current >= 0 {
				assert.GreaterOrEqual(t, st.Balance, tt.current-st.UsablePoints)
			}
		})
	}
}

func TestItemTotal(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "a", Price: 19.99, Quantity: 3},
		{ProductID: "b", Price: 0.01, Quantity: 1},
	}
	assert.Equal(t, 59.98, ItemTotal(items, nil))

	override := 42.0
	assert.Equal(t, 42.0, ItemTotal(items, &override))
	assert.Equal(t, 0.0, ItemTotal(nil, nil))
}
