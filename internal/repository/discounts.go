package repository

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type DiscountRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewDiscountRepository(db *mongo.Database) *DiscountRepository {
	return &DiscountRepository{coll: db.Collection(DiscountsCollection), now: time.Now}
}

func (r *DiscountRepository) Create(ctx context.Context, d *models.Discount) error {
	now := r.now()
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.CreatedAt = now
	d.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("discount code %s already exists", d.Code)
	}
	if err != nil {
		return errors.Wrap(err, "insert discount")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = id
	}
	return nil
}

func (r *DiscountRepository) List(ctx context.Context) ([]models.Discount, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, errors.Wrap(err, "find discounts")
	}
	defer cursor.Close(ctx)

	discounts := make([]models.Discount, 0)
	if err := cursor.All(ctx, &discounts); err != nil {
		return nil, errors.Wrap(err, "decode discounts")
	}
	return discounts, nil
}

func (r *DiscountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	var d models.Discount
	if err := decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}), &d, "discount", id.Hex()); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var d models.Discount
	if err := decodeOne(r.coll.FindOne(ctx, bson.M{"code": code}), &d, "discount", code); err != nil {
		return nil, err
	}
	return &d, nil
}

// Replace overwrites d, keeping its creation time.
func (r *DiscountRepository) Replace(ctx context.Context, d *models.Discount) error {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.UpdatedAt = r.now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("discount code %s already exists", d.Code)
	}
	if err != nil {
		return errors.Wrap(err, "replace discount")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("discount %s not found", d.ID.Hex())
	}
	return nil
}

func (r *DiscountRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete discount")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("discount %s not found", id.Hex())
	}
	return nil
}
