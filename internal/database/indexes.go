package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{
			collection: "users",
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			}},
		},
		{
			collection: "orders",
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("userId_createdAt"),
			}},
		},
		{
			collection: "cart_items",
			models: []mongo.IndexModel{{
				// Guest items carry no userId; the partial filter keeps them out.
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}},
				Options: options.Index().
					SetName("userId_productId_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{
						"userId":    bson.M{"$exists": true},
						"productId": bson.M{"$exists": true},
					}),
			}},
		},
		{
			collection: "discounts",
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetName("code_unique").SetUnique(true),
			}},
		},
		{
			collection: "products",
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "brand", Value: 1}},
					Options: options.Index().SetName("brand_index"),
				},
				{
					Keys:    bson.D{{Key: "productName", Value: "text"}, {Key: "description", Value: "text"}},
					Options: options.Index().SetName("product_text"),
				},
			},
		},
		{
			collection: "payment_events",
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "orderRef", Value: 1}},
				Options: options.Index().SetName("orderRef_index"),
			}},
		},
	}
}

// EnsureIndexes creates every index the repositories rely on. Failures are
// collected per collection so one bad index does not block the rest.
func EnsureIndexes(ctx context.Context, db *mongo.Database, lg *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var failed []string
	for _, plan := range indexPlan() {
		names, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
		if err != nil {
			lg.Warn("Index creation failed", zap.String("collection", plan.collection), zap.Error(err))
			failed = append(failed, plan.collection)
			continue
		}
		lg.Debug("Indexes ensured", zap.String("collection", plan.collection), zap.Strings("indexes", names))
	}
	if len(failed) > 0 {
		return errors.Errorf("ensure indexes: %v", failed)
	}
	return nil
}
