package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	client := &Client{keySecret: "test-secret"}

	sig := client.Sign("order_MNq8Wg1sVb4jQ2", "pay_NQr9Xh2tWc5kR3")
	require.Len(t, sig, 64)

	assert.True(t, client.VerifySignature("order_MNq8Wg1sVb4jQ2", "pay_NQr9Xh2tWc5kR3", sig))
	assert.True(t, client.VerifySignature("order_MNq8Wg1sVb4jQ2", "pay_NQr9Xh2tWc5kR3", " "+sig+" "))
}

func TestVerifySignatureRejectsMutation(t *testing.T) {
	client := &Client{keySecret: "test-secret"}
	sig := client.Sign("order_A", "pay_B")

	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	assert.False(t, client.VerifySignature("order_A", "pay_B", string(mutated)))
	assert.False(t, client.VerifySignature("order_A", "pay_C", sig))
	assert.False(t, client.VerifySignature("order_A", "pay_B", ""))
}

func TestSignIsDeterministic(t *testing.T) {
	client := &Client{keySecret: "k"}
	assert.Equal(t, client.Sign("o", "p"), client.Sign("o", "p"))

	other := &Client{keySecret: "k2"}
	assert.NotEqual(t, client.Sign("o", "p"), other.Sign("o", "p"))
}

func TestResponseParsing(t *testing.T) {
	order := orderFromResponse(map[string]interface{}{
		"id":       "order_X",
		"amount":   float64(28600),
		"currency": "INR",
		"receipt":  "RJ2506170001",
		"status":   "created",
	})
	assert.Equal(t, "order_X", order.ID)
	assert.Equal(t, int64(28600), order.AmountPaise)
	assert.Equal(t, "RJ2506170001", order.Receipt)

	payment := paymentFromResponse(map[string]interface{}{
		"id":       "pay_Y",
		"order_id": "order_X",
		"amount":   float64(28600),
		"status":   "captured",
		"method":   "upi",
	})
	assert.Equal(t, "order_X", payment.GatewayOrderID)
	assert.Equal(t, "captured", payment.Status)

	refund := refundFromResponse(map[string]interface{}{"id": "rfnd_Z", "amount": "100"})
	assert.Equal(t, int64(0), refund.AmountPaise, "non-numeric amounts decode to zero")
}
