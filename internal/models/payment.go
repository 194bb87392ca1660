package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a checkout made with a non-redirect method.
type Payment struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Method string             `bson:"method" json:"method"`
	Items  []CartItem         `bson:"items" json:"items"`
	Date   time.Time          `bson:"date" json:"date"`
}

// PaymentEvent is an append-only audit entry for a gateway callback.
type PaymentEvent struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Gateway          string             `bson:"gateway" json:"gateway"`
	OrderRef         string             `bson:"orderRef" json:"orderRef"`
	Amount           float64            `bson:"amount" json:"amount"`
	IsValidSignature bool               `bson:"isValidSignature" json:"isValidSignature"`
	IsSuccess        bool               `bson:"isSuccess" json:"isSuccess"`
	Message          string             `bson:"message" json:"message"`
	Raw              map[string]string  `bson:"raw" json:"raw"`
	Timestamp        time.Time          `bson:"timestamp" json:"timestamp"`
}
