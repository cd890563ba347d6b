package dto

// MidtransWebhookRequest is the payment notification body posted by the
// gateway. SignatureKey must verify before anything else is trusted.
type MidtransWebhookRequest struct {
	TransactionId     string `json:"transaction_id"`
	OrderId           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	StatusMessage     string `json:"status_message"`
}
