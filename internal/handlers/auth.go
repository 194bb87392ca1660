package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/account"
	"storefront/internal/models"
)

// AccountService is the part of account.Service the auth routes use.
type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*account.AuthResult, error)
	Login(ctx context.Context, email, password string) (*account.AuthResult, error)
	Me(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	Guest(ctx context.Context, email, shippingAddress string) (*account.AuthResult, error)
	QuickRegister(ctx context.Context, email, fullName, address string) (*account.AuthResult, error)
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	FullName        string `json:"fullname" binding:"required"`
	Gender          string `json:"gender"`
	ShippingAddress string `json:"shippingAddress"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type guestRequest struct {
	Email           string `json:"email" binding:"required,email"`
	ShippingAddress string `json:"shippingAddress"`
}

type quickRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullname"`
	Address  string `json:"address"`
}

func Register(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, lg, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := accounts.Register(c.Request.Context(), account.RegisterInput{
			Email:           req.Email,
			Password:        req.Password,
			FullName:        req.FullName,
			Gender:          req.Gender,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusCreated, res)
	}
}

func Login(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, lg, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := accounts.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

func GetMe(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		user, err := accounts.Me(c.Request.Context(), userID)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func ChangePassword(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/change-password"
		defer handlePanic(c, lg, route)

		userID, ok := currentUserID(c, lg, route)
		if !ok {
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := accounts.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "password changed"})
	}
}

func ForgotPassword(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/forgot-password"
		defer handlePanic(c, lg, route)

		var req forgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "a new password has been sent to your email"})
	}
}

func GuestCheckout(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/guest"
		defer handlePanic(c, lg, route)

		var req guestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := accounts.Guest(c.Request.Context(), req.Email, req.ShippingAddress)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

func QuickRegister(accounts AccountService, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/quick-register"
		defer handlePanic(c, lg, route)

		var req quickRegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := accounts.QuickRegister(c.Request.Context(), req.Email, req.FullName, req.Address)
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusCreated, res)
	}
}
