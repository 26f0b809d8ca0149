package razorpay

// OrderCreateParams captures the inputs for registering a gateway order.
type OrderCreateParams struct {
	AmountPaise int64
	Receipt     string
	Notes       map[string]string
}

func (p OrderCreateParams) toRequest(currency string) map[string]interface{} {
	data := map[string]interface{}{
		"amount":   p.AmountPaise,
		"currency": currency,
		"receipt":  p.Receipt,
	}
	if len(p.Notes) > 0 {
		notes := make(map[string]interface{}, len(p.Notes))
		for k, v := range p.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}
	return data
}

// RefundCreateParams captures the inputs for refunding a captured payment.
type RefundCreateParams struct {
	PaymentID   string
	AmountPaise int64
	Notes       map[string]string
}

func (p RefundCreateParams) toRequest() map[string]interface{} {
	data := map[string]interface{}{}
	if len(p.Notes) > 0 {
		notes := make(map[string]interface{}, len(p.Notes))
		for k, v := range p.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}
	return data
}

// GatewayOrder is the subset of the order payload the platform consumes.
type GatewayOrder struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
}

// GatewayPayment is the subset of the payment payload the platform consumes.
type GatewayPayment struct {
	ID             string
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
	Status         string
	Method         string
}

// GatewayRefund is the subset of the refund payload the platform consumes.
type GatewayRefund struct {
	ID          string
	PaymentID   string
	AmountPaise int64
	Status      string
}

func orderFromResponse(resp map[string]interface{}) *GatewayOrder {
	return &GatewayOrder{
		ID:          respString(resp, "id"),
		AmountPaise: respInt64(resp, "amount"),
		Currency:    respString(resp, "currency"),
		Receipt:     respString(resp, "receipt"),
		Status:      respString(resp, "status"),
	}
}

func paymentFromResponse(resp map[string]interface{}) *GatewayPayment {
	return &GatewayPayment{
		ID:             respString(resp, "id"),
		GatewayOrderID: respString(resp, "order_id"),
		AmountPaise:    respInt64(resp, "amount"),
		Currency:       respString(resp, "currency"),
		Status:         respString(resp, "status"),
		Method:         respString(resp, "method"),
	}
}

func refundFromResponse(resp map[string]interface{}) *GatewayRefund {
	return &GatewayRefund{
		ID:          respString(resp, "id"),
		PaymentID:   respString(resp, "payment_id"),
		AmountPaise: respInt64(resp, "amount"),
		Status:      respString(resp, "status"),
	}
}

func respString(resp map[string]interface{}, key string) string {
	if v, ok := resp[key].(string); ok {
		return v
	}
	return ""
}

// The SDK decodes JSON numbers as float64; amounts fit int64 exactly
// because they are integral paise.
func respInt64(resp map[string]interface{}, key string) int64 {
	switch v := resp[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
