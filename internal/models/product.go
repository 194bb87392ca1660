package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductTypeNew        = "New Product"
	ProductTypeBestSeller = "Best Seller"
)

type ProductVariant struct {
	ID       string  `bson:"id" json:"id"`
	Label    string  `bson:"label" json:"label"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	SKU      string  `bson:"sku,omitempty" json:"sku,omitempty"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductName string             `bson:"productName" json:"productName"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Brand       string             `bson:"brand" json:"brand"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	TypeProduct string             `bson:"typeProduct" json:"typeProduct"`
	Img         string             `bson:"img,omitempty" json:"img,omitempty"`
	Tags        StringList         `bson:"tags,omitempty" json:"tags,omitempty"`
	Variants    []ProductVariant   `bson:"variants" json:"variants"`
	InStock     bool               `bson:"-" json:"inStock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
