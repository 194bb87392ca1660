package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/discount"
	"storefront/internal/models"
)

type DiscountService interface {
	Create(ctx context.Context, in discount.Input) (*models.Discount, error)
	List(ctx context.Context) ([]models.Discount, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Discount, error)
	Update(ctx context.Context, id primitive.ObjectID, in discount.Input) (*models.Discount, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Lookup(ctx context.Context, code string, orderTotal *float64) (*discount.Quote, error)
}

type discountRequest struct {
	Code               string               `json:"code" binding:"required"`
	Description        string               `json:"description"`
	DiscountType       string               `json:"discountType" binding:"required,oneof=percentage fixed"`
	Value              float64              `json:"value" binding:"required,gt=0"`
	MaxUsage           int                  `json:"maxUsage" binding:"gte=0"`
	MinOrderValue      float64              `json:"minOrderValue" binding:"gte=0"`
	StartDate          time.Time            `json:"startDate" binding:"required"`
	EndDate            time.Time            `json:"endDate" binding:"required"`
	ApplicableProducts []primitive.ObjectID `json:"applicableProducts"`
	ApplicableUsers    []primitive.ObjectID `json:"applicableUsers"`
	IsActive           *bool                `json:"isActive"`
}

func (r discountRequest) input() discount.Input {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return discount.Input{
		Code:               r.Code,
		Description:        r.Description,
		DiscountType:       r.DiscountType,
		Value:              r.Value,
		MaxUsage:           r.MaxUsage,
		MinOrderValue:      r.MinOrderValue,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		ApplicableProducts: r.ApplicableProducts,
		ApplicableUsers:    r.ApplicableUsers,
		IsActive:           active,
	}
}

func CreateDiscount(discounts DiscountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /discount"
		defer handlePanic(c, lg, route)

		var req discountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		d, err := discounts.Create(c.Request.Context(), req.input())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusCreated, d)
	}
}

func GetDiscounts(discounts DiscountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /discount"
		defer handlePanic(c, lg, route)

		list, err := discounts.List(c.Request.Context())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func GetDiscount(discounts DiscountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /discount/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		d, err := discounts.Get(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, d)
	}
}

// GetDiscountByCode validates a code for checkout. An orderTotal query
// parameter prices the discount against that total.
func GetDiscountByCode(discounts DiscountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /discount/code/:code"
		defer handlePanic(c, lg, route)

		var orderTotal *float64
		if raw := strings.TrimSpace(c.Query("orderTotal")); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				respondWithError(c, lg, http.StatusBadRequest, route, "invalid orderTotal")
				return
			}
			orderTotal = &v
		}

		quote, err := discounts.Lookup(c.Request.Context(), c.Param("code"), orderTotal)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, quote)
	}
}

func UpdateDiscount(discounts DiscountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /discount/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		var req discountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		d, err := discounts.Update(c.Request.Context(), id, req.input())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, d)
	}
}

func DeleteDiscount(discounts DiscountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /discount/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		if err := discounts.Delete(c.Request.Context(), id); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "discount deleted"})
	}
}
