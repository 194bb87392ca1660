package order

import (
	"math"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// accrualRate is the share of the paid amount credited back as points.
var accrualRate = decimal.New(1, -1)

// Settlement is the point arithmetic of one checkout.
type Settlement struct {
	ItemTotal     float64
	UsablePoints  int64
	PayableAmount float64
	PointsEarned  int64
	// Balance is the user's point balance after the order.
	Balance int64
}

// MaxOrderTotal is the largest order total accepted at checkout. Point
// arithmetic on larger totals would not fit in int64.
const MaxOrderTotal = 1e15

var maxPoints = decimal.NewFromInt(math.MaxInt64)

func validTotal(v float64) bool {
	return v >= 0 && v <= MaxOrderTotal
}

// Settle redeems up to requested points against itemTotal and accrues new
// points on what remains payable. Negative or fractional requests are
// clamped and truncated rather than rejected. Point values saturate at
// zero and math.MaxInt64.
func Settle(itemTotal float64, currentPoints int64, requested float64) Settlement {
	usable := min(floorPoints(decimalOf(requested)), max(currentPoints, 0), floorPoints(decimalOf(itemTotal)))

	payable := math.Max(itemTotal-float64(usable), 0)
	earned := floorPoints(decimalOf(payable).Mul(accrualRate))

	balance := decimal.NewFromInt(currentPoints).
		Sub(decimal.NewFromInt(usable)).
		Add(decimal.NewFromInt(earned))

	return Settlement{
		ItemTotal:     itemTotal,
		UsablePoints:  usable,
		PayableAmount: payable,
		PointsEarned:  earned,
		Balance:       clampPoints(balance),
	}
}

// decimalOf maps NaN to zero and infinities to the int64 bounds.
func decimalOf(v float64) decimal.Decimal {
	switch {
	case math.IsNaN(v):
		return decimal.Zero
	case math.IsInf(v, 1):
		return maxPoints
	case math.IsInf(v, -1):
		return maxPoints.Neg()
	}
	return decimal.NewFromFloat(v)
}

// floorPoints floors d into [0, MaxInt64].
func floorPoints(d decimal.Decimal) int64 {
	return clampPoints(d.Floor())
}

func clampPoints(d decimal.Decimal) int64 {
	switch {
	case d.IsNegative():
		return 0
	case d.GreaterThan(maxPoints):
		return math.MaxInt64
	}
	return d.IntPart()
}

// ItemTotal returns override when set, otherwise the sum of price × quantity.
func ItemTotal(items []models.OrderItem, override *float64) float64 {
	if override != nil {
		return *override
	}
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.InexactFloat64()
}
