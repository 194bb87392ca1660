package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusShipped   = "Shipped"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:   {},
	OrderStatusPaid:      {},
	OrderStatusShipped:   {},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// IsValidOrderStatus reports whether status belongs to the order status enum.
func IsValidOrderStatus(status string) bool {
	_, ok := orderStatuses[status]
	return ok
}

// OrderItem is a snapshot of a purchased product, not a live reference.
type OrderItem struct {
	ProductID   string  `bson:"productId" json:"productId"`
	ProductName string  `bson:"productName" json:"productName"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
}

// ShippingSnapshot is the address copied onto the order at placement time.
type ShippingSnapshot struct {
	FullName    string `bson:"fullName" json:"fullName"`
	Phone       string `bson:"phone" json:"phone"`
	AddressLine string `bson:"addressLine" json:"addressLine"`
	Ward        string `bson:"ward,omitempty" json:"ward,omitempty"`
	District    string `bson:"district,omitempty" json:"district,omitempty"`
	City        string `bson:"city,omitempty" json:"city,omitempty"`
	Note        string `bson:"note,omitempty" json:"note,omitempty"`
}

// StatusEntry is one transition of the order status trail.
type StatusEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Order is the persisted purchase record. StatusHistory is newest-first and
// its head always matches Status.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	PayableAmount   float64            `bson:"payableAmount" json:"payableAmount"`
	PointsRedeemed  int64              `bson:"pointsRedeemed" json:"pointsRedeemed"`
	PointsEarned    int64              `bson:"pointsEarned" json:"pointsEarned"`
	Status          string             `bson:"status" json:"status"`
	StatusHistory   []StatusEntry      `bson:"statusHistory" json:"statusHistory"`
	ShippingAddress ShippingSnapshot   `bson:"shippingAddress" json:"shippingAddress"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
