package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Discount is a coupon definition. Code is stored upper-cased.
type Discount struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Code               string               `bson:"code" json:"code"`
	Description        string               `bson:"description,omitempty" json:"description,omitempty"`
	DiscountType       string               `bson:"discountType" json:"discountType"`
	Value              float64              `bson:"value" json:"value"`
	MaxUsage           int                  `bson:"maxUsage" json:"maxUsage"`
	UsedCount          int                  `bson:"usedCount" json:"usedCount"`
	MinOrderValue      float64              `bson:"minOrderValue" json:"minOrderValue"`
	StartDate          time.Time            `bson:"startDate" json:"startDate"`
	EndDate            time.Time            `bson:"endDate" json:"endDate"`
	ApplicableProducts []primitive.ObjectID `bson:"applicableProducts" json:"applicableProducts"`
	ApplicableUsers    []primitive.ObjectID `bson:"applicableUsers" json:"applicableUsers"`
	IsActive           bool                 `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}
