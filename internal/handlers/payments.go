package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/payment"
)

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	List(ctx context.Context) ([]models.Payment, error)
}

type PaymentEventStore interface {
	Append(ctx context.Context, e *models.PaymentEvent) error
}

// PaymentGateway signs outgoing payments and verifies returns.
type PaymentGateway interface {
	CreatePayment(req payment.CreateRequest) (*payment.CreateResult, error)
	VerifyReturn(query map[string]string) payment.ReturnResult
}

type createPaymentRequest struct {
	Method string            `json:"method" binding:"required"`
	Items  []cartItemRequest `json:"items" binding:"required,min=1,dive"`
}

type createVNPayRequest struct {
	Amount           float64 `json:"amount" binding:"required,gte=1000"`
	OrderDescription string  `json:"orderDescription"`
	BankCode         string  `json:"bankCode"`
	Locale           string  `json:"locale"`
}

func CreatePayment(payments PaymentStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment"
		defer handlePanic(c, lg, route)

		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items := make([]models.CartItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, models.CartItem{
				ProductID:   strings.TrimSpace(item.ProductID),
				ProductName: strings.TrimSpace(item.ProductName),
				ShopName:    strings.TrimSpace(item.ShopName),
				Price:       item.Price,
				Quantity:    item.Quantity,
				Image:       item.Image,
				Status:      item.Status,
			})
		}

		p := &models.Payment{Method: strings.TrimSpace(req.Method), Items: items}
		if err := payments.Create(c.Request.Context(), p); err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusCreated, p)
	}
}

func GetPayments(payments PaymentStore, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payment"
		defer handlePanic(c, lg, route)

		list, err := payments.List(c.Request.Context())
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func CreateVNPayPayment(gateway PaymentGateway, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/vnpay/create"
		defer handlePanic(c, lg, route)

		var req createVNPayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := gateway.CreatePayment(payment.CreateRequest{
			Amount:           req.Amount,
			OrderDescription: req.OrderDescription,
			BankCode:         req.BankCode,
			Locale:           req.Locale,
			IPAddr:           clientIP(c),
		})
		if err != nil {
			respondAppError(c, lg, route, err)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// VNPayReturn verifies the gateway callback, records it and sends the
// shopper on to the storefront result page.
func VNPayReturn(gateway PaymentGateway, events PaymentEventStore, frontendURL string, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payment/vnpay/return"
		defer handlePanic(c, lg, route)

		query := make(map[string]string)
		for k, v := range c.Request.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}

		res := gateway.VerifyReturn(query)

		event := &models.PaymentEvent{
			Gateway:          "vnpay",
			OrderRef:         res.OrderID,
			Amount:           res.Amount,
			IsValidSignature: res.IsValidSignature,
			IsSuccess:        res.IsSuccess,
			Message:          res.Message,
			Raw:              res.Raw,
			Timestamp:        time.Now(),
		}
		if err := events.Append(c.Request.Context(), event); err != nil {
			lg.Warn("Payment event not recorded", zap.String("order_ref", res.OrderID), zap.Error(err))
		}

		target, err := resultURL(frontendURL, res)
		if err != nil {
			lg.Error("Invalid frontend result URL", zap.String("url", frontendURL), zap.Error(err))
			respondWithError(c, lg, http.StatusInternalServerError, route, "internal server error")
			return
		}

		c.Redirect(http.StatusFound, target)
	}
}

func resultURL(base string, res payment.ReturnResult) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	status := "failed"
	if res.IsSuccess {
		status = "success"
	}
	signature := "invalid"
	if res.IsValidSignature {
		signature = "valid"
	}
	q.Set("status", status)
	q.Set("orderId", res.OrderID)
	q.Set("amount", strconv.FormatFloat(res.Amount, 'f', -1, 64))
	q.Set("message", res.Message)
	q.Set("signature", signature)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "127.0.0.1"
}
