package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type CartService interface {
	Add(ctx context.Context, userID primitive.ObjectID, in cart.ItemInput) (*models.CartItem, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	Get(ctx context.Context, userID, id primitive.ObjectID) (*models.CartItem, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, patch repository.CartPatch) (*models.CartItem, error)
	Remove(ctx context.Context, userID, id primitive.ObjectID) error
	Sync(ctx context.Context, userID primitive.ObjectID, in []cart.ItemInput) ([]models.CartItem, error)
}

type cartItemRequest struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName" binding:"required"`
	ShopName    string  `json:"shopName"`
	Price       float64 `json:"price" binding:"gte=0"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	Image       string  `json:"image"`
	Status      string  `json:"status"`
}

func (r cartItemRequest) input() cart.ItemInput {
	return cart.ItemInput{
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		ShopName:    r.ShopName,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Image:       r.Image,
		Status:      r.Status,
	}
}

type syncCartRequest struct {
	Items []cartItemRequest `json:"items" binding:"dive"`
}

type updateCartRequest struct {
	Quantity *int     `json:"quantity" binding:"omitempty,min=1"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0"`
	Status   *string  `json:"status"`
}

func AddToCart(carts CartService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		item, err := carts.Add(c.Request.Context(), userID, req.input())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

func SyncCart(carts CartService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/sync"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		var req syncCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		lines := make([]cart.ItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, item.input())
		}

		items, err := carts.Sync(c.Request.Context(), userID, lines)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func GetCart(carts CartService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		items, err := carts.List(c.Request.Context(), userID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func GetCartItem(carts CartService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart/:id"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		item, err := carts.Get(c.Request.Context(), userID, id)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func UpdateCartItem(carts CartService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/:id"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		var req updateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		item, err := carts.Update(c.Request.Context(), userID, id, repository.CartPatch{
			Quantity: req.Quantity,
			Price:    req.Price,
			Status:   req.Status,
		})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func DeleteCartItem(carts CartService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:id"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		if err := carts.Remove(c.Request.Context(), userID, id); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart item deleted"})
	}
}
