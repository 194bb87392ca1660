package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/order"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in order.CreateInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, in order.UpdateInput) (*models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type orderItemRequest struct {
	ProductID   string  `json:"productId" binding:"required"`
	ProductName string  `json:"productName" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0,lte=1e15"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
}

// createOrderRequest has no userId: the buyer is always the caller.
type createOrderRequest struct {
	Items             []orderItemRequest  `json:"items" binding:"required,min=1,dive"`
	TotalPrice        *float64            `json:"totalPrice" binding:"omitempty,gte=0,lte=1e15"`
	PointsToRedeem    *float64            `json:"pointsToRedeem"`
	ShippingAddressID string              `json:"shippingAddressId"`
	ShippingAddress   *order.AddressInput `json:"shippingAddress"`
}

type updateOrderRequest struct {
	Status          *string                  `json:"status"`
	Items           []orderItemRequest       `json:"items" binding:"omitempty,dive"`
	TotalPrice      *float64                 `json:"totalPrice" binding:"omitempty,gte=0,lte=1e15"`
	ShippingAddress *models.ShippingSnapshot `json:"shippingAddress"`
}

func toOrderItems(reqs []orderItemRequest) []models.OrderItem {
	if reqs == nil {
		return nil
	}
	items := make([]models.OrderItem, 0, len(reqs))
	for _, item := range reqs {
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	return items
}

func CreateOrder(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		created, err := orders.CreateOrder(c.Request.Context(), order.CreateInput{
			UserID:            userID,
			Items:             toOrderItems(req.Items),
			TotalPrice:        req.TotalPrice,
			PointsToRedeem:    req.PointsToRedeem,
			ShippingAddressID: req.ShippingAddressID,
			ShippingAddress:   req.ShippingAddress,
		})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusCreated, created)
	}
}

func GetOrders(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order"
		defer handlePanic(c, lg, route)

		list, err := orders.List(c.Request.Context())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func GetMyOrders(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/me"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		list, err := orders.ListByUser(c.Request.Context(), userID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func GetUserOrders(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/user/:userId"
		defer handlePanic(c, lg, route)

		userID, ok := pathObjectID(c, lg, route, "userId")
		if !ok {
			return
		}

		list, err := orders.ListByUser(c.Request.Context(), userID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

// GetOrder serves the owner of the order and admins.
func GetOrder(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/:id"
		defer handlePanic(c, lg, route)

		callerID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}
		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		found, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}
		if found.UserID != callerID && !isAdmin(c) {
			respondAppError(c, lg, route, apperr.Forbidden("you can only view your own orders"))
			return
		}

		c.JSON(http.StatusOK, found)
	}
}

func UpdateOrder(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /order/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updated, err := orders.UpdateOrder(c.Request.Context(), id, order.UpdateInput{
			Status:          req.Status,
			Items:           toOrderItems(req.Items),
			TotalPrice:      req.TotalPrice,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteOrder(orders OrderService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /order/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		if err := orders.Delete(c.Request.Context(), id); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
