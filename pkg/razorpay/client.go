package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/config"
	pkgerrors "github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/errors"
	"github.com/blackhawk-2003/Readjunction-Major-sub000/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// Client exposes Razorpay primitives with centralized auth, logging, and error mapping.
type Client struct {
	sdk       *razorpay.Client
	keyID     string
	keySecret string
	currency  string
	logger    *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	c := &Client{
		sdk:       razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// NewSigner builds a client that can only sign and verify callback
// signatures. Used where the full SDK surface is not needed.
func NewSigner(keyID, keySecret string) *Client {
	return &Client{keyID: keyID, keySecret: keySecret, currency: "INR"}
}

// KeyID returns the public key id handed to the hosted checkout widget.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder registers a gateway order for the given amount in paise.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*GatewayOrder, error) {
	data := params.toRequest(c.currency)
	c.log(ctx, "request", "create_order", map[string]any{
		"receipt":      params.Receipt,
		"amount_paise": params.AmountPaise,
	})

	resp, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, c.mapGatewayError(err, "create order")
	}

	order := orderFromResponse(resp)
	c.log(ctx, "response", "create_order", map[string]any{
		"gateway_order_id": order.ID,
		"status":           order.Status,
	})
	return order, nil
}

// FetchPayment retrieves payment details for callback verification.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	c.log(ctx, "request", "fetch_payment", map[string]any{"payment_id": paymentID})

	resp, err := c.sdk.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		c.log(ctx, "error", "fetch_payment", map[string]any{"error": err.Error()})
		return nil, c.mapGatewayError(err, "fetch payment")
	}

	payment := paymentFromResponse(resp)
	c.log(ctx, "response", "fetch_payment", map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
	return payment, nil
}

// CreateRefund issues a refund against a captured payment.
func (c *Client) CreateRefund(ctx context.Context, params RefundCreateParams) (*GatewayRefund, error) {
	data := params.toRequest()
	c.log(ctx, "request", "create_refund", map[string]any{
		"payment_id":   params.PaymentID,
		"amount_paise": params.AmountPaise,
	})

	resp, err := c.sdk.Payment.Refund(params.PaymentID, int(params.AmountPaise), data, nil)
	if err != nil {
		c.log(ctx, "error", "create_refund", map[string]any{"error": err.Error()})
		return nil, c.mapGatewayError(err, "create refund")
	}

	refund := refundFromResponse(resp)
	c.log(ctx, "response", "create_refund", map[string]any{
		"refund_id": refund.ID,
		"status":    refund.Status,
	})
	return refund, nil
}

// Sign computes the checkout callback signature for a gateway order/payment pair.
func (c *Client) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the checkout callback signature in constant time.
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	expected := c.Sign(gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "token", "secret", "signature", "email", "phone", "vpa"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapGatewayError(err error, op string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("razorpay %s failed", op))
}
