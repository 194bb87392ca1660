package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"storefront/internal/account"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/discount"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/order"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

type services struct {
	accounts  *account.Service
	carts     *cart.Service
	orders    *order.Service
	discounts *discount.Service
	gateway   *payment.Gateway
	stores    *repository.Stores
}

func registerRoutes(r *gin.Engine, cfg *config.Config, client *mongo.Client, svc services, lg *zap.Logger) {
	hl := lg.Named("http")
	userAuth := middleware.UserAuth(cfg.JWTSecret, hl)
	adminAuth := middleware.AdminAuth(cfg.JWTSecret, hl)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/")
	api.Use(handlers.DatabaseGuard(client, hl))

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(svc.accounts, hl))
		auth.POST("/login", handlers.Login(svc.accounts, hl))
		auth.POST("/forgot-password", handlers.ForgotPassword(svc.accounts, hl))
		auth.POST("/guest", handlers.GuestCheckout(svc.accounts, hl))
		auth.POST("/quick-register", handlers.QuickRegister(svc.accounts, hl))
		auth.GET("/me", userAuth, handlers.GetMe(svc.accounts, hl))
		auth.POST("/change-password", userAuth, handlers.ChangePassword(svc.accounts, hl))
	}

	user := api.Group("/user")
	{
		user.POST("/favourite/:productId", userAuth, handlers.ToggleFavourite(svc.accounts, hl))
		user.GET("/favourites", userAuth, handlers.GetFavourites(svc.accounts, hl))

		user.GET("/addresses/me", userAuth, handlers.GetUserAddresses(svc.accounts, hl))
		user.POST("/addresses", userAuth, handlers.CreateUserAddress(svc.accounts, hl))
		user.PATCH("/addresses/:addressId", userAuth, handlers.UpdateUserAddress(svc.accounts, hl))
		user.DELETE("/addresses/:addressId", userAuth, handlers.DeleteUserAddress(svc.accounts, hl))
		user.POST("/addresses/:addressId/default", userAuth, handlers.SetDefaultUserAddress(svc.accounts, hl))

		user.GET("", adminAuth, handlers.GetUsers(svc.accounts, hl))
		user.GET("/:id", adminAuth, handlers.GetUser(svc.accounts, hl))
		user.PATCH("/:id", adminAuth, handlers.UpdateUser(svc.accounts, hl))
		user.DELETE("/:id", adminAuth, handlers.DeleteUser(svc.accounts, hl))
	}

	carts := api.Group("/cart", userAuth)
	{
		carts.POST("", handlers.AddToCart(svc.carts, hl))
		carts.POST("/sync", handlers.SyncCart(svc.carts, hl))
		carts.GET("", handlers.GetCart(svc.carts, hl))
		carts.GET("/:id", handlers.GetCartItem(svc.carts, hl))
		carts.PATCH("/:id", handlers.UpdateCartItem(svc.carts, hl))
		carts.DELETE("/:id", handlers.DeleteCartItem(svc.carts, hl))
	}

	orders := api.Group("/order")
	{
		orders.POST("", userAuth, handlers.CreateOrder(svc.orders, hl))
		orders.GET("/me", userAuth, handlers.GetMyOrders(svc.orders, hl))
		orders.GET("/:id", userAuth, handlers.GetOrder(svc.orders, hl))
		orders.GET("", adminAuth, handlers.GetOrders(svc.orders, hl))
		orders.GET("/user/:userId", adminAuth, handlers.GetUserOrders(svc.orders, hl))
		orders.PATCH("/:id", adminAuth, handlers.UpdateOrder(svc.orders, hl))
		orders.DELETE("/:id", adminAuth, handlers.DeleteOrder(svc.orders, hl))
	}

	payments := api.Group("/payment")
	{
		payments.POST("", userAuth, handlers.CreatePayment(svc.stores.Payments, hl))
		payments.GET("", adminAuth, handlers.GetPayments(svc.stores.Payments, hl))
		payments.POST("/vnpay/create", handlers.CreateVNPayPayment(svc.gateway, hl))
		payments.GET("/vnpay/return", handlers.VNPayReturn(svc.gateway, svc.stores.PaymentEvents, cfg.VNPay.FrontendResultURL, hl))
	}

	discounts := api.Group("/discount")
	{
		discounts.GET("/code/:code", handlers.GetDiscountByCode(svc.discounts, hl))
		discounts.POST("", adminAuth, handlers.CreateDiscount(svc.discounts, hl))
		discounts.GET("", adminAuth, handlers.GetDiscounts(svc.discounts, hl))
		discounts.GET("/:id", adminAuth, handlers.GetDiscount(svc.discounts, hl))
		discounts.PUT("/:id", adminAuth, handlers.UpdateDiscount(svc.discounts, hl))
		discounts.DELETE("/:id", adminAuth, handlers.DeleteDiscount(svc.discounts, hl))
	}

	products := api.Group("/product")
	{
		products.GET("", handlers.GetProducts(svc.stores.Products, hl))
		products.GET("/filter", handlers.FilterProducts(svc.stores.Products, hl))
		products.GET("/brand/:brand", handlers.GetProductsByBrand(svc.stores.Products, hl))
		products.GET("/:id", handlers.GetProduct(svc.stores.Products, hl))
		products.POST("", adminAuth, handlers.CreateProduct(svc.stores.Products, hl))
		products.PATCH("/:id", adminAuth, handlers.UpdateProduct(svc.stores.Products, hl))
		products.DELETE("/:id", adminAuth, handlers.DeleteProduct(svc.stores.Products, hl))
	}
}
