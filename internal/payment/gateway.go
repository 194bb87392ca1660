// Package payment builds and verifies VNPay redirect payments.
package payment

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/apperr"
)

// VNPay protocol fields.
const (
	ParamVersion           = "vnp_Version"
	ParamCommand           = "vnp_Command"
	ParamTmnCode           = "vnp_TmnCode"
	ParamLocale            = "vnp_Locale"
	ParamCurrCode          = "vnp_CurrCode"
	ParamTxnRef            = "vnp_TxnRef"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamOrderType         = "vnp_OrderType"
	ParamAmount            = "vnp_Amount"
	ParamReturnURL         = "vnp_ReturnUrl"
	ParamIPAddr            = "vnp_IpAddr"
	ParamCreateDate        = "vnp_CreateDate"
	ParamBankCode          = "vnp_BankCode"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionStatus = "vnp_TransactionStatus"
)

const (
	protocolVersion = "2.1.0"
	commandPay      = "pay"
	currencyVND     = "VND"
	orderTypeOther  = "other"
	defaultLocale   = "vn"
	createDateFmt   = "20060102150405"

	codeSuccess   = "00"
	codeCancelled = "24"

	// MinAmount is the smallest payable amount in VND.
	MinAmount = 1000
)

// ErrNotConfigured is returned when the merchant code or hash secret is empty.
var ErrNotConfigured = apperr.BadRequest("VNPay is not configured")

var (
	vietnamTime = time.FixedZone("GMT+7", 7*60*60)
	hundred     = decimal.NewFromInt(100)
)

type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

// CreateRequest describes a payment the shopper will be redirected to pay.
type CreateRequest struct {
	Amount           float64
	OrderDescription string
	BankCode         string
	Locale           string
	IPAddr           string
}

type CreateResult struct {
	PaymentURL string `json:"paymentUrl"`
	OrderRef   string `json:"orderId"`
}

// ReturnResult is the normalized outcome of a gateway return callback.
type ReturnResult struct {
	IsValidSignature bool              `json:"isValidSignature"`
	IsSuccess        bool              `json:"isSuccess"`
	OrderID          string            `json:"orderId"`
	Amount           float64           `json:"amount"`
	ResponseCode     string            `json:"responseCode"`
	Message          string            `json:"message"`
	Raw              map[string]string `json:"raw"`
}

type Gateway struct {
	cfg    Config
	lg     *zap.Logger
	now    func() time.Time
	newRef func(time.Time) string
}

func NewGateway(cfg Config, lg *zap.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		lg:     lg,
		now:    time.Now,
		newRef: defaultRef,
	}
}

// defaultRef derives the merchant transaction reference from the clock.
func defaultRef(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func (g *Gateway) configured() bool {
	return g.cfg.TmnCode != "" && g.cfg.HashSecret != ""
}

// CreatePayment signs a payment request and returns the gateway URL the
// shopper should be redirected to.
func (g *Gateway) CreatePayment(req CreateRequest) (*CreateResult, error) {
	if !g.configured() {
		return nil, ErrNotConfigured
	}
	if req.Amount < MinAmount {
		return nil, apperr.BadRequest("amount must be at least %d", MinAmount)
	}

	now := g.now().In(vietnamTime)
	ref := g.newRef(now)

	info := strings.TrimSpace(req.OrderDescription)
	if info == "" {
		info = "Thanh toan don hang " + ref
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = defaultLocale
	}

	params := map[string]string{
		ParamVersion:    protocolVersion,
		ParamCommand:    commandPay,
		ParamTmnCode:    g.cfg.TmnCode,
		ParamLocale:     locale,
		ParamCurrCode:   currencyVND,
		ParamTxnRef:     ref,
		ParamOrderInfo:  info,
		ParamOrderType:  orderTypeOther,
		ParamAmount:     ScaleAmount(req.Amount),
		ParamReturnURL:  g.cfg.ReturnURL,
		ParamIPAddr:     req.IPAddr,
		ParamCreateDate: now.Format(createDateFmt),
	}
	if bank := strings.TrimSpace(req.BankCode); bank != "" {
		params[ParamBankCode] = bank
	}

	signature := Sign(g.cfg.HashSecret, params)

	query := make(url.Values, len(params)+1)
	for k, v := range params {
		query.Set(k, strings.TrimSpace(v))
	}
	query.Set(ParamSecureHash, signature)

	payURL, err := url.Parse(g.cfg.PayURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse VNPay URL")
	}
	payURL.RawQuery = query.Encode()

	g.lg.Info("Payment created",
		zap.String("order_ref", ref),
		zap.String("amount", params[ParamAmount]),
		zap.String("ip", req.IPAddr),
	)
	return &CreateResult{PaymentURL: payURL.String(), OrderRef: ref}, nil
}

// VerifyReturn checks the signature of the parameters the gateway echoed
// back and classifies the outcome.
func (g *Gateway) VerifyReturn(query map[string]string) ReturnResult {
	raw := make(map[string]string, len(query))
	params := make(map[string]string, len(query))
	for k, v := range query {
		raw[k] = v
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		params[k] = v
	}

	valid := g.cfg.HashSecret != "" && VerifySignature(g.cfg.HashSecret, params, query[ParamSecureHash])
	code := params[ParamResponseCode]
	success := valid && code == codeSuccess && params[ParamTransactionStatus] == codeSuccess

	res := ReturnResult{
		IsValidSignature: valid,
		IsSuccess:        success,
		OrderID:          params[ParamTxnRef],
		Amount:           DescaleAmount(params[ParamAmount]),
		ResponseCode:     code,
		Message:          returnMessage(valid, success, code),
		Raw:              raw,
	}

	lg := g.lg.With(zap.String("order_ref", res.OrderID), zap.String("response_code", code))
	if !valid {
		lg.Warn("Payment return with invalid signature")
	} else {
		lg.Info("Payment return verified", zap.Bool("success", success))
	}
	return res
}

func returnMessage(valid, success bool, code string) string {
	switch {
	case !valid:
		return "Invalid payment signature"
	case success:
		return "Payment successful"
	case code == codeCancelled:
		return "Transaction cancelled by customer"
	default:
		return "Payment failed (code " + code + ")"
	}
}

// ScaleAmount converts VND to the integer subunit (x100) the gateway expects,
// rounded to a whole number.
func ScaleAmount(amount float64) string {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).String()
}

// DescaleAmount reverses ScaleAmount. Unparseable input yields 0.
func DescaleAmount(v string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return d.Div(hundred).InexactFloat64()
}
