package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type CartRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{coll: db.Collection(CartItemsCollection), now: time.Now}
}

// Add stores item. For a signed-in user adding a product already in the
// cart, the quantity is incremented instead of creating a second line.
func (r *CartRepository) Add(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	now := r.now()
	if item.Status == "" {
		item.Status = models.CartStatusPending
	}

	if item.UserID == nil || item.ProductID == "" {
		item.CreatedAt = now
		item.UpdatedAt = now
		res, err := r.coll.InsertOne(ctx, item)
		if err != nil {
			return nil, errors.Wrap(err, "insert cart item")
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			item.ID = id
		}
		return item, nil
	}

	filter := bson.M{"userId": *item.UserID, "productId": item.ProductID}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$set": bson.M{
			"productName": item.ProductName,
			"shopName":    item.ShopName,
			"price":       item.Price,
			"image":       item.Image,
			"status":      item.Status,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.CartItem
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, errors.Wrap(err, "upsert cart item")
	}
	return &stored, nil
}

func (r *CartRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	var item models.CartItem
	if err := decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}), &item, "cart item", id.Hex()); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, newestFirst())
	if err != nil {
		return nil, errors.Wrap(err, "find cart items")
	}
	defer cursor.Close(ctx)

	items := make([]models.CartItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return items, nil
}

// CartPatch lists the mutable fields of a cart line.
type CartPatch struct {
	Quantity *int
	Price    *float64
	Status   *string
}

func (r *CartRepository) Update(ctx context.Context, id primitive.ObjectID, patch CartPatch) (*models.CartItem, error) {
	set := bson.M{"updatedAt": r.now()}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.CartItem
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts)
	if err := decodeOne(res, &item, "cart item", id.Hex()); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete cart item")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("cart item %s not found", id.Hex())
	}
	return nil
}

// DeleteByUserAndProducts removes the user's lines for the given products.
func (r *CartRepository) DeleteByUserAndProducts(ctx context.Context, userID primitive.ObjectID, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"userId":    userID,
		"productId": bson.M{"$in": productIDs},
	})
	if err != nil {
		return 0, errors.Wrap(err, "delete ordered cart items")
	}
	return res.DeletedCount, nil
}

// ReplaceForUser swaps the user's cart for items, used when a guest cart is
// synced after sign-in.
func (r *CartRepository) ReplaceForUser(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) ([]models.CartItem, error) {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}
	if len(items) == 0 {
		return []models.CartItem{}, nil
	}

	now := r.now()
	docs := make([]interface{}, 0, len(items))
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		items[i].UserID = &userID
		if items[i].Status == "" {
			items[i].Status = models.CartStatusPending
		}
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		docs = append(docs, items[i])
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return nil, errors.Wrap(err, "insert synced cart")
	}
	return items, nil
}
