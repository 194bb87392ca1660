package repository

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Product sort keys accepted by Filter.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type ProductRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection), now: time.Now}
}

// ProductFilter narrows a catalogue listing. Zero values are ignored and a
// zero Limit disables paging.
type ProductFilter struct {
	Brand       string
	TypeProduct string
	Search      string
	PriceMin    *float64
	PriceMax    *float64
	MinQuantity *int
	SortBy      string
	Page        int64
	Limit       int64
}

func (f ProductFilter) query() bson.M {
	filter := bson.M{}
	if brand := strings.TrimSpace(f.Brand); brand != "" {
		filter["brand"] = bson.M{"$regex": "^" + regexp.QuoteMeta(brand) + "$", "$options": "i"}
	}
	if typ := strings.TrimSpace(f.TypeProduct); typ != "" {
		filter["typeProduct"] = typ
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = bson.A{
			bson.M{"productName": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	price := bson.M{}
	if f.PriceMin != nil {
		price["$gte"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		price["$lte"] = *f.PriceMax
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if f.MinQuantity != nil {
		filter["quantity"] = bson.M{"$gte": *f.MinQuantity}
	}
	return filter
}

func (f ProductFilter) sort() bson.D {
	switch f.SortBy {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	case SortName:
		return bson.D{{Key: "productName", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// Filter returns one page of matching products and the total match count.
func (r *ProductRepository) Filter(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	query := f.query()

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	opts := options.Find().SetSort(f.sort())
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip((page - 1) * f.Limit).SetLimit(f.Limit)
	}

	products, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) ListByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	products, _, err := r.Filter(ctx, ProductFilter{Brand: brand})
	return products, err
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var raw bson.M
	if err := decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}), &raw, "product", id.Hex()); err != nil {
		return nil, err
	}
	p, err := normalizeProductDocument(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := r.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Variants == nil {
		p.Variants = []models.ProductVariant{}
	}

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return errors.Wrap(err, "insert product")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	p.InStock = p.Quantity > 0
	return nil
}

// Replace overwrites p, keeping its creation time.
func (r *ProductRepository) Replace(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = r.now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return errors.Wrap(err, "replace product")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product %s not found", p.ID.Hex())
	}
	p.InStock = p.Quantity > 0
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("product %s not found", id.Hex())
	}
	return nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "decode product")
		}
		p, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return products, nil
}

// normalizeProductDocument coerces numeric fields that older imports stored
// as strings or mixed integer widths.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	raw["price"] = toFloat(raw["price"])
	raw["quantity"] = int(toFloat(raw["quantity"]))

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, errors.Wrap(err, "re-encode product")
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, errors.Wrap(err, "decode product")
	}
	p.InStock = p.Quantity > 0
	return p, nil
}

func toFloat(v interface{}) float64 {
	switch typed := v.(type) {
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case int:
		return float64(typed)
	case float64:
		return typed
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
