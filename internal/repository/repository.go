// Package repository holds the MongoDB-backed stores. Every method honours a
// mongo.SessionContext passed as ctx, so callers can group writes in a
// transaction through database.TxRunner.
package repository

import (
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
)

// Collection names.
const (
	UsersCollection         = "users"
	OrdersCollection        = "orders"
	CartItemsCollection     = "cart_items"
	DiscountsCollection     = "discounts"
	ProductsCollection      = "products"
	PaymentsCollection      = "payments"
	PaymentEventsCollection = "payment_events"
)

// Stores bundles every repository over one database.
type Stores struct {
	Users         *UserRepository
	Orders        *OrderRepository
	Cart          *CartRepository
	Discounts     *DiscountRepository
	Products      *ProductRepository
	Payments      *PaymentRepository
	PaymentEvents *PaymentEventRepository
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Users:         NewUserRepository(db),
		Orders:        NewOrderRepository(db),
		Cart:          NewCartRepository(db),
		Discounts:     NewDiscountRepository(db),
		Products:      NewProductRepository(db),
		Payments:      NewPaymentRepository(db),
		PaymentEvents: NewPaymentEventRepository(db),
	}
}

// decodeOne maps ErrNoDocuments to a NotFound error naming the entity.
func decodeOne(res *mongo.SingleResult, out any, entity, id string) error {
	err := res.Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("%s %s not found", entity, id)
	}
	if err != nil {
		return errors.Wrapf(err, "find %s", entity)
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}
