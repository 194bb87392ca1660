package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type ProductStore interface {
	Filter(ctx context.Context, f repository.ProductFilter) ([]models.Product, int64, error)
	ListByBrand(ctx context.Context, brand string) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Replace(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type variantRequest struct {
	ID       string  `json:"id"`
	Label    string  `json:"label" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"gte=0"`
	SKU      string  `json:"sku"`
	Image    string  `json:"image"`
}

type createProductRequest struct {
	ProductName string           `json:"productName" binding:"required"`
	Description string           `json:"description"`
	Price       float64          `json:"price" binding:"gte=0"`
	Brand       string           `json:"brand" binding:"required"`
	Quantity    int              `json:"quantity" binding:"gte=0"`
	TypeProduct string           `json:"typeProduct"`
	Img         string           `json:"img"`
	Tags        []string         `json:"tags"`
	Variants    []variantRequest `json:"variants" binding:"omitempty,dive"`
}

type updateProductRequest struct {
	ProductName *string          `json:"productName"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price" binding:"omitempty,gte=0"`
	Brand       *string          `json:"brand"`
	Quantity    *int             `json:"quantity" binding:"omitempty,gte=0"`
	TypeProduct *string          `json:"typeProduct"`
	Img         *string          `json:"img"`
	Tags        []string         `json:"tags"`
	Variants    []variantRequest `json:"variants" binding:"omitempty,dive"`
}

func toVariants(reqs []variantRequest) []models.ProductVariant {
	variants := make([]models.ProductVariant, 0, len(reqs))
	for _, v := range reqs {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			id = uuid.NewString()
		}
		variants = append(variants, models.ProductVariant{
			ID:       id,
			Label:    strings.TrimSpace(v.Label),
			Price:    v.Price,
			Quantity: v.Quantity,
			SKU:      strings.TrimSpace(v.SKU),
			Image:    v.Image,
		})
	}
	return variants
}

func (r updateProductRequest) apply(p *models.Product) {
	if r.ProductName != nil {
		p.ProductName = strings.TrimSpace(*r.ProductName)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Brand != nil {
		p.Brand = strings.TrimSpace(*r.Brand)
	}
	if r.Quantity != nil {
		p.Quantity = *r.Quantity
	}
	if r.TypeProduct != nil {
		p.TypeProduct = strings.TrimSpace(*r.TypeProduct)
	}
	if r.Img != nil {
		p.Img = *r.Img
	}
	if r.Tags != nil {
		p.Tags = models.StringList(r.Tags)
	}
	if r.Variants != nil {
		p.Variants = toVariants(r.Variants)
	}
}

func GetProducts(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product"
		defer handlePanic(c, lg, route)

		list, _, err := products.Filter(c.Request.Context(), repository.ProductFilter{})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

// FilterProducts pages only when both page and limit are given.
func FilterProducts(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/filter"
		defer handlePanic(c, lg, route)

		f := repository.ProductFilter{
			Brand:       c.Query("brand"),
			TypeProduct: c.Query("typeProduct"),
			Search:      c.Query("search"),
			SortBy:      c.Query("sortBy"),
		}

		var ok bool
		if f.PriceMin, ok = optionalFloat(c, lg, route, "priceMin"); !ok {
			return
		}
		if f.PriceMax, ok = optionalFloat(c, lg, route, "priceMax"); !ok {
			return
		}
		if raw := strings.TrimSpace(c.Query("minQuantity")); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				respondWithError(c, lg, http.StatusBadRequest, route, "invalid minQuantity")
				return
			}
			f.MinQuantity = &v
		}

		window, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, lg, http.StatusBadRequest, route, err.Error())
			return
		}
		f.Page, f.Limit = window.Page, window.Limit

		list, total, err := products.Filter(c.Request.Context(), f)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, window.decorate(gin.H{"data": list, "total": total}, total))
	}
}

func GetProductsByBrand(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/brand/:brand"
		defer handlePanic(c, lg, route)

		brand := strings.TrimSpace(c.Param("brand"))
		if brand == "" {
			respondWithError(c, lg, http.StatusBadRequest, route, "brand is required")
			return
		}

		list, err := products.ListByBrand(c.Request.Context(), brand)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func GetProduct(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		p, err := products.FindByID(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, p)
	}
}

func CreateProduct(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /product"
		defer handlePanic(c, lg, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		typeProduct := strings.TrimSpace(req.TypeProduct)
		if typeProduct == "" {
			typeProduct = models.ProductTypeNew
		}
		p := &models.Product{
			ProductName: strings.TrimSpace(req.ProductName),
			Description: req.Description,
			Price:       req.Price,
			Brand:       strings.TrimSpace(req.Brand),
			Quantity:    req.Quantity,
			TypeProduct: typeProduct,
			Img:         req.Img,
			Tags:        models.StringList(req.Tags),
			Variants:    toVariants(req.Variants),
		}

		if err := products.Create(c.Request.Context(), p); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		lg.Info("Product created", zap.String("product_id", p.ID.Hex()), zap.String("brand", p.Brand))
		c.JSON(http.StatusCreated, p)
	}
}

func UpdateProduct(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /product/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		p, err := products.FindByID(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}
		req.apply(p)
		if p.ProductName == "" || p.Brand == "" {
			respondWithError(c, lg, http.StatusBadRequest, route, "productName and brand must not be empty")
			return
		}

		if err := products.Replace(c.Request.Context(), p); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, p)
	}
}

func DeleteProduct(products ProductStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /product/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		if err := products.Delete(c.Request.Context(), id); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

func optionalFloat(c *gin.Context, lg *zap.Logger, route, name string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		respondWithError(c, lg, http.StatusBadRequest, route, "invalid "+name)
		return nil, false
	}
	return &v, true
}
