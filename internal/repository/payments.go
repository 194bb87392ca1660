package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type PaymentRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(PaymentsCollection), now: time.Now}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if p.Date.IsZero() {
		p.Date = r.now()
	}
	if p.Items == nil {
		p.Items = []models.CartItem{}
	}
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return errors.Wrap(err, "insert payment")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find payments")
	}
	defer cursor.Close(ctx)

	payments := make([]models.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, errors.Wrap(err, "decode payments")
	}
	return payments, nil
}

// PaymentEventRepository is the append-only gateway callback log.
type PaymentEventRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewPaymentEventRepository(db *mongo.Database) *PaymentEventRepository {
	return &PaymentEventRepository{coll: db.Collection(PaymentEventsCollection), now: time.Now}
}

func (r *PaymentEventRepository) Append(ctx context.Context, e *models.PaymentEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	res, err := r.coll.InsertOne(ctx, e)
	if err != nil {
		return errors.Wrap(err, "append payment event")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = id
	}
	return nil
}
