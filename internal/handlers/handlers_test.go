package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/discount"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/order"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware.
func asUser(id primitive.ObjectID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type fakeOrders struct {
	created order.CreateInput
	err     error
	byID    map[primitive.ObjectID]*models.Order
}

func (f *fakeOrders) CreateOrder(_ context.Context, in order.CreateInput) (*models.Order, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: primitive.NewObjectID(), UserID: in.UserID, Items: in.Items, Status: models.OrderStatusPending}, nil
}

func (f *fakeOrders) UpdateOrder(_ context.Context, id primitive.ObjectID, in order.UpdateInput) (*models.Order, error) {
	if in.Status != nil && !models.IsValidOrderStatus(*in.Status) {
		return nil, apperr.BadRequest("invalid order status %q", *in.Status)
	}
	return f.Get(context.Background(), id)
}

func (f *fakeOrders) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("order %s not found", id.Hex())
	}
	return o, nil
}

func (f *fakeOrders) List(context.Context) ([]models.Order, error) { return nil, nil }

func (f *fakeOrders) ListByUser(context.Context, primitive.ObjectID) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (f *fakeOrders) Delete(context.Context, primitive.ObjectID) error { return nil }

func TestCreateOrderUsesAuthenticatedUser(t *testing.T) {
	orders := &fakeOrders{}
	caller := primitive.NewObjectID()
	r := gin.New()
	r.POST("/order", asUser(caller, "user"), CreateOrder(orders, zap.NewNop()))

	points := 50.0
	w := doJSON(t, r, http.MethodPost, "/order", map[string]any{
		"userId":            primitive.NewObjectID().Hex(),
		"items":             []map[string]any{{"productId": "p1", "productName": "Phone", "price": 500, "quantity": 2}},
		"pointsToRedeem":    points,
		"shippingAddressId": "addr-1",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, caller, orders.created.UserID)
	assert.Equal(t, "addr-1", orders.created.ShippingAddressID)
	require.NotNil(t, orders.created.PointsToRedeem)
	assert.Equal(t, points, *orders.created.PointsToRedeem)
	require.Len(t, orders.created.Items, 1)
	assert.Equal(t, 2, orders.created.Items[0].Quantity)
}

func TestCreateOrderValidation(t *testing.T) {
	r := gin.New()
	r.POST("/order", asUser(primitive.NewObjectID(), "user"), CreateOrder(&fakeOrders{}, zap.NewNop()))

	w := doJSON(t, r, http.MethodPost, "/order", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation failed", body["error"])
	assert.Contains(t, body["details"], "items is required")
}

func TestCreateOrderRejectsOversizedAmounts(t *testing.T) {
	orders := &fakeOrders{}
	r := gin.New()
	r.POST("/order", asUser(primitive.NewObjectID(), "user"), CreateOrder(orders, zap.NewNop()))

	for _, body := range []map[string]any{
		{"items": []map[string]any{{"productId": "p1", "productName": "Kettle", "price": 1e20, "quantity": 1}}},
		{"items": []map[string]any{{"productId": "p1", "productName": "Kettle", "price": 10, "quantity": 1}}, "totalPrice": 1e16},
	} {
		w := doJSON(t, r, http.MethodPost, "/order", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Empty(t, orders.created.Items)
}

func TestCreateOrderErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"user missing", apperr.NotFound("user abc not found"), http.StatusNotFound, "user abc not found"},
		{"no address", apperr.BadRequest("no shipping address available"), http.StatusBadRequest, "no shipping address available"},
		{"store down", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/order", asUser(primitive.NewObjectID(), "user"), CreateOrder(&fakeOrders{err: tt.err}, zap.NewNop()))

			w := doJSON(t, r, http.MethodPost, "/order", map[string]any{
				"items": []map[string]any{{"productId": "p1", "productName": "Phone", "price": 1, "quantity": 1}},
			}, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["error"])
		})
	}
}

func TestGetOrderOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	o := &models.Order{ID: primitive.NewObjectID(), UserID: owner}
	orders := &fakeOrders{byID: map[primitive.ObjectID]*models.Order{o.ID: o}}

	get := func(caller primitive.ObjectID, role string) int {
		r := gin.New()
		r.GET("/order/:id", asUser(caller, role), GetOrder(orders, zap.NewNop()))
		return doJSON(t, r, http.MethodGet, "/order/"+o.ID.Hex(), nil, nil).Code
	}

	assert.Equal(t, http.StatusOK, get(owner, "user"))
	assert.Equal(t, http.StatusForbidden, get(primitive.NewObjectID(), "user"))
	assert.Equal(t, http.StatusOK, get(primitive.NewObjectID(), "admin"))
}

func TestUpdateOrderRejectsUnknownStatus(t *testing.T) {
	o := &models.Order{ID: primitive.NewObjectID()}
	orders := &fakeOrders{byID: map[primitive.ObjectID]*models.Order{o.ID: o}}
	r := gin.New()
	r.PATCH("/order/:id", UpdateOrder(orders, zap.NewNop()))

	w := doJSON(t, r, http.MethodPatch, "/order/"+o.ID.Hex(), map[string]any{"status": "Lost"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/order/not-an-id", map[string]any{"status": "Paid"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", decodeBody(t, w)["error"])
}

type fakeGateway struct {
	req    payment.CreateRequest
	result payment.ReturnResult
}

func (f *fakeGateway) CreatePayment(req payment.CreateRequest) (*payment.CreateResult, error) {
	f.req = req
	return &payment.CreateResult{PaymentURL: "https://pay.example/x", OrderRef: "1700000000000"}, nil
}

func (f *fakeGateway) VerifyReturn(query map[string]string) payment.ReturnResult {
	res := f.result
	res.Raw = query
	return res
}

type fakeEvents struct {
	appended []*models.PaymentEvent
	err      error
}

func (f *fakeEvents) Append(_ context.Context, e *models.PaymentEvent) error {
	f.appended = append(f.appended, e)
	return f.err
}

func TestCreateVNPayPaymentClientIP(t *testing.T) {
	gw := &fakeGateway{}
	r := gin.New()
	r.POST("/payment/vnpay/create", CreateVNPayPayment(gw, zap.NewNop()))

	h := http.Header{}
	h.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	w := doJSON(t, r, http.MethodPost, "/payment/vnpay/create", map[string]any{"amount": 150000, "bankCode": "NCB"}, h)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.7", gw.req.IPAddr)
	assert.Equal(t, 150000.0, gw.req.Amount)
	assert.Equal(t, "NCB", gw.req.BankCode)
	assert.Equal(t, "1700000000000", decodeBody(t, w)["orderId"])

	w = doJSON(t, r, http.MethodPost, "/payment/vnpay/create", map[string]any{"amount": 999}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVNPayReturnRedirects(t *testing.T) {
	gw := &fakeGateway{result: payment.ReturnResult{
		IsValidSignature: true,
		IsSuccess:        true,
		OrderID:          "1700000000000",
		Amount:           150000,
		Message:          "Payment successful",
	}}
	events := &fakeEvents{err: errors.New("write failed")}
	r := gin.New()
	r.GET("/payment/vnpay/return", VNPayReturn(gw, events, "http://localhost:3001/payment/vnpay-result", zap.NewNop()))

	w := doJSON(t, r, http.MethodGet, "/payment/vnpay/return?vnp_TxnRef=1700000000000&vnp_ResponseCode=00", nil, nil)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/payment/vnpay-result", loc.Path)
	q := loc.Query()
	assert.Equal(t, "success", q.Get("status"))
	assert.Equal(t, "1700000000000", q.Get("orderId"))
	assert.Equal(t, "150000", q.Get("amount"))
	assert.Equal(t, "Payment successful", q.Get("message"))
	assert.Equal(t, "valid", q.Get("signature"))

	require.Len(t, events.appended, 1)
	assert.Equal(t, "vnpay", events.appended[0].Gateway)
	assert.Equal(t, "00", events.appended[0].Raw["vnp_ResponseCode"])
}

func TestVNPayReturnInvalidSignature(t *testing.T) {
	gw := &fakeGateway{result: payment.ReturnResult{Message: "Invalid payment signature"}}
	r := gin.New()
	r.GET("/payment/vnpay/return", VNPayReturn(gw, &fakeEvents{}, "http://localhost:3001/result", zap.NewNop()))

	w := doJSON(t, r, http.MethodGet, "/payment/vnpay/return?vnp_SecureHash=bad", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "failed", loc.Query().Get("status"))
	assert.Equal(t, "invalid", loc.Query().Get("signature"))
	assert.Equal(t, "0", loc.Query().Get("amount"))
}

type fakeDiscounts struct {
	DiscountService
	code  string
	total *float64
}

func (f *fakeDiscounts) Lookup(_ context.Context, code string, orderTotal *float64) (*discount.Quote, error) {
	f.code, f.total = code, orderTotal
	return &discount.Quote{Discount: &models.Discount{Code: "SALE10"}}, nil
}

func TestGetDiscountByCode(t *testing.T) {
	discounts := &fakeDiscounts{}
	r := gin.New()
	r.GET("/discount/code/:code", GetDiscountByCode(discounts, zap.NewNop()))

	w := doJSON(t, r, http.MethodGet, "/discount/code/sale10?orderTotal=250000", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sale10", discounts.code)
	require.NotNil(t, discounts.total)
	assert.Equal(t, 250000.0, *discounts.total)

	w = doJSON(t, r, http.MethodGet, "/discount/code/sale10?orderTotal=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeProducts struct {
	ProductStore
	filter repository.ProductFilter
}

func (f *fakeProducts) Filter(_ context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	f.filter = filter
	return []models.Product{}, 41, nil
}

func TestFilterProductsQuery(t *testing.T) {
	products := &fakeProducts{}
	r := gin.New()
	r.GET("/product/filter", FilterProducts(products, zap.NewNop()))

	w := doJSON(t, r, http.MethodGet, "/product/filter?brand=Apple&priceMin=100&minQuantity=1&sortBy=price_asc&page=2&limit=20", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Apple", products.filter.Brand)
	require.NotNil(t, products.filter.PriceMin)
	assert.Equal(t, 100.0, *products.filter.PriceMin)
	assert.Nil(t, products.filter.PriceMax)
	require.NotNil(t, products.filter.MinQuantity)
	assert.Equal(t, int64(2), products.filter.Page)
	assert.Equal(t, float64(3), decodeBody(t, w)["totalPages"])

	w = doJSON(t, r, http.MethodGet, "/product/filter?priceMax=cheap", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/product/filter?page=0&limit=10", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context, *readpref.ReadPref) error { return f.err }

func TestDatabaseGuard(t *testing.T) {
	build := func(p Pinger) *gin.Engine {
		r := gin.New()
		r.Use(DatabaseGuard(p, zap.NewNop()))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	assert.Equal(t, http.StatusNoContent, doJSON(t, build(fakePinger{}), http.MethodGet, "/x", nil, nil).Code)
	w := doJSON(t, build(fakePinger{err: errors.New("no primary")}), http.MethodGet, "/x", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "database unavailable", decodeBody(t, w)["error"])
}

func TestPageFromQuery(t *testing.T) {
	read := func(target string) (pageWindow, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return pageFromQuery(c)
	}

	w, err := read("/p")
	require.NoError(t, err)
	assert.False(t, w.paged())

	w, err = read("/p?page=3")
	require.NoError(t, err)
	assert.False(t, w.paged(), "page without limit leaves results unpaged")

	w, err = read("/p?page=3&limit=50")
	require.NoError(t, err)
	assert.Equal(t, pageWindow{Page: 3, Limit: 50}, w)
	assert.Equal(t, int64(3), w.totalPages(101))
	assert.Equal(t, int64(0), w.totalPages(0))

	for _, bad := range []string{"page=0&limit=10", "page=x&limit=10", "page=1&limit=0", "page=1&limit=101"} {
		_, err := read("/p?" + bad)
		assert.ErrorIs(t, err, errInvalidPagination, bad)
	}
}

type fakePayments struct {
	created []*models.Payment
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	p.ID = primitive.NewObjectID()
	f.created = append(f.created, p)
	return nil
}

func (f *fakePayments) List(context.Context) ([]models.Payment, error) {
	out := make([]models.Payment, 0, len(f.created))
	for _, p := range f.created {
		out = append(out, *p)
	}
	return out, nil
}

func TestCreatePaymentStoresCartSnapshots(t *testing.T) {
	payments := &fakePayments{}
	r := gin.New()
	r.POST("/payment", CreatePayment(payments, zap.NewNop()))
	r.GET("/payment", GetPayments(payments, zap.NewNop()))

	w := doJSON(t, r, http.MethodPost, "/payment", map[string]any{
		"method": " cod ",
		"items":  []map[string]any{{"productId": "p1", "productName": " Phone ", "price": 500, "quantity": 2}},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, payments.created, 1)
	assert.Equal(t, "cod", payments.created[0].Method)
	require.Len(t, payments.created[0].Items, 1)
	assert.Equal(t, "Phone", payments.created[0].Items[0].ProductName)

	w = doJSON(t, r, http.MethodPost, "/payment", map[string]any{"method": "cod"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/payment", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
