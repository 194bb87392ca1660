package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CartStatusPending = "pending"

// CartItem is a pending purchase intent. UserID is nil for guest carts.
type CartItem struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	ProductID   string              `bson:"productId,omitempty" json:"productId,omitempty"`
	ProductName string              `bson:"productName" json:"productName"`
	ShopName    string              `bson:"shopName,omitempty" json:"shopName,omitempty"`
	Price       float64             `bson:"price" json:"price"`
	Quantity    int                 `bson:"quantity" json:"quantity"`
	Image       string              `bson:"image,omitempty" json:"image,omitempty"`
	Status      string              `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
