package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/account"
	"storefront/internal/models"
	"storefront/internal/repository"
)

// UserService covers the admin user routes, favourites and the address book.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Me(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch repository.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleFavourite(ctx context.Context, id, productID primitive.ObjectID) ([]models.Product, error)
	Favourites(ctx context.Context, id primitive.ObjectID) ([]models.Product, error)
	ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.ShippingAddress, error)
	AddAddress(ctx context.Context, userID primitive.ObjectID, in account.AddressInput) ([]models.ShippingAddress, error)
	UpdateAddress(ctx context.Context, userID primitive.ObjectID, addressID string, in account.AddressInput) ([]models.ShippingAddress, error)
	RemoveAddress(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.ShippingAddress, error)
	SetDefaultAddress(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.ShippingAddress, error)
}

type updateUserRequest struct {
	FullName        *string `json:"fullname"`
	Gender          *string `json:"gender"`
	Avatar          *string `json:"avatar"`
	Role            *string `json:"role" binding:"omitempty,oneof=user admin"`
	ShippingAddress *string `json:"shippingAddress"`
}

type addressRequest struct {
	Label       *string `json:"label"`
	FullName    *string `json:"fullName"`
	Phone       *string `json:"phone"`
	AddressLine *string `json:"addressLine"`
	Ward        *string `json:"ward"`
	District    *string `json:"district"`
	City        *string `json:"city"`
	Note        *string `json:"note"`
	IsDefault   *bool   `json:"isDefault"`
}

func (r addressRequest) input() account.AddressInput {
	return account.AddressInput{
		Label:       r.Label,
		FullName:    r.FullName,
		Phone:       r.Phone,
		AddressLine: r.AddressLine,
		Ward:        r.Ward,
		District:    r.District,
		City:        r.City,
		Note:        r.Note,
		IsDefault:   r.IsDefault,
	}
}

func GetUsers(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user"
		defer handlePanic(c, lg, route)

		list, err := users.List(c.Request.Context())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func GetUser(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		user, err := users.Me(c.Request.Context(), id)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func UpdateUser(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /user/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		user, err := users.Update(c.Request.Context(), id, repository.UserPatch{
			FullName:        req.FullName,
			Gender:          req.Gender,
			Avatar:          req.Avatar,
			Role:            req.Role,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func DeleteUser(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/:id"
		defer handlePanic(c, lg, route)

		id, ok := pathObjectID(c, lg, route, "id")
		if !ok {
			return
		}

		if err := users.Delete(c.Request.Context(), id); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}

func ToggleFavourite(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/favourite/:productId"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}
		productID, ok := pathObjectID(c, lg, route, "productId")
		if !ok {
			return
		}

		favourites, err := users.ToggleFavourite(c.Request.Context(), userID, productID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "Favourite list updated",
			"favourites": favourites,
		})
	}
}

func GetFavourites(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/favourites"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		favourites, err := users.Favourites(c.Request.Context(), userID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, favourites)
	}
}

func GetUserAddresses(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/addresses/me"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		addresses, err := users.ListAddresses(c.Request.Context(), userID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

func CreateUserAddress(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		addresses, err := users.AddAddress(c.Request.Context(), userID, req.input())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		lg.Info("Address created", zap.String("user_id", userID.Hex()))
		c.JSON(http.StatusCreated, gin.H{"addresses": addresses})
	}
}

func UpdateUserAddress(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /user/addresses/:addressId"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}
		addressID := strings.TrimSpace(c.Param("addressId"))

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		addresses, err := users.UpdateAddress(c.Request.Context(), userID, addressID, req.input())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

func DeleteUserAddress(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/addresses/:addressId"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		addresses, err := users.RemoveAddress(c.Request.Context(), userID, strings.TrimSpace(c.Param("addressId")))
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

func SetDefaultUserAddress(users UserService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses/:addressId/default"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		addresses, err := users.SetDefaultAddress(c.Request.Context(), userID, strings.TrimSpace(c.Param("addressId")))
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}
