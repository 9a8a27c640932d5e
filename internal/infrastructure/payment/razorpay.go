package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/staffhub/staffhub/internal/application/billing/paymentgateway"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// RazorpayConfig holds credentials for the orders API.
type RazorpayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
	// RequestsPerSecond caps outbound calls; zero means 10.
	RequestsPerSecond float64
}

// LatencyObserver receives the duration of each outbound call.
type LatencyObserver func(op, result string, d time.Duration)

// RazorpayGateway talks to a Razorpay-compatible REST API.
type RazorpayGateway struct {
	cfg     RazorpayConfig
	client  *http.Client
	limiter *rate.Limiter
	latency LatencyObserver
	logger  logger.Interface
}

var _ paymentgateway.Gateway = (*RazorpayGateway)(nil)

func NewRazorpayGateway(cfg RazorpayConfig, logger logger.Interface) *RazorpayGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &RazorpayGateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)),
		logger:  logger,
	}
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Method   string `json:"method"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *RazorpayGateway) SetLatencyObserver(o LatencyObserver) {
	g.latency = o
}

func (g *RazorpayGateway) observe(op string, start time.Time, err error) {
	if g.latency == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	g.latency(op, result, time.Since(start))
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	if req.Amount <= 0 {
		return nil, errors.NewValidationError("order amount must be a positive number of minor units")
	}

	var out orderResponse
	body := orderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	start := time.Now()
	err := g.do(ctx, http.MethodPost, "/orders", body, &out)
	g.observe("create_order", start, err)
	if err != nil {
		return nil, err
	}

	g.logger.Infow("gateway order created", "order_id", out.ID, "amount", out.Amount, "receipt", out.Receipt)
	return &paymentgateway.Order{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*paymentgateway.PaymentDetails, error) {
	var out paymentResponse
	start := time.Now()
	err := g.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &out)
	g.observe("fetch_payment", start, err)
	if err != nil {
		return nil, err
	}
	return &paymentgateway.PaymentDetails{
		ID:       out.ID,
		OrderID:  out.OrderID,
		Method:   out.Method,
		Status:   out.Status,
		Amount:   out.Amount,
		Currency: out.Currency,
	}, nil
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), g.cfg.KeySecret, signature)
}

func (g *RazorpayGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return verifyHMAC(rawBody, g.cfg.WebhookSecret, signature)
}

func (g *RazorpayGateway) PublicKey() string {
	return g.cfg.KeyID
}

// Sign computes the hex HMAC-SHA256 the provider sends for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyHMAC(payload []byte, secret, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (g *RazorpayGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return errors.NewGatewayError("payment provider call cancelled").WithCause(err)
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warnw("payment provider unreachable", "method", method, "path", path, "error", err)
		return errors.NewGatewayError("payment provider unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.NewGatewayError("failed to read payment provider response").WithCause(err)
	}

	if resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		g.logger.Warnw("payment provider rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"code", apiErr.Error.Code,
			"description", apiErr.Error.Description,
		)
		gwErr := errors.NewGatewayError("payment provider rejected request", apiErr.Error.Description)
		// Client errors will fail again unchanged.
		gwErr.Retryable = resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return gwErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewGatewayError("malformed payment provider response").WithCause(err)
	}
	return nil
}
