package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryClient is an in-process Client for tests and local development.
// Failures are scripted per order id; by default every call succeeds.
type MemoryClient struct {
	mu          sync.Mutex
	seq         int
	paymentErrs map[string][]error
	refundErrs  map[string]error
	Payments    []PaymentRequest
	Refunds     []RefundRequest
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		paymentErrs: make(map[string][]error),
		refundErrs:  make(map[string]error),
	}
}

// FailPaymentWith queues errs to be returned by successive InitiatePayment
// calls for orderId. Once drained, calls succeed again.
func (c *MemoryClient) FailPaymentWith(orderId string, errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paymentErrs[orderId] = append(c.paymentErrs[orderId], errs...)
}

func (c *MemoryClient) FailRefundWith(orderId string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refundErrs[orderId] = err
}

func (c *MemoryClient) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Payments = append(c.Payments, req)

	if queued := c.paymentErrs[req.OrderId]; len(queued) > 0 {
		err := queued[0]
		c.paymentErrs[req.OrderId] = queued[1:]
		return nil, err
	}

	c.seq++
	txnId := fmt.Sprintf("GW%03d", c.seq)
	raw, _ := json.Marshal(map[string]string{"transaction_id": txnId, "order_id": req.OrderId})
	return &PaymentInitiation{
		GatewayTransactionId: txnId,
		RedirectUrl:          "https://pay.example.test/" + txnId,
		RawResponse:          raw,
	}, nil
}

func (c *MemoryClient) InitiateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Refunds = append(c.Refunds, req)

	if err := c.refundErrs[req.OrderId]; err != nil {
		return nil, err
	}

	c.seq++
	refundId := fmt.Sprintf("RF%03d", c.seq)
	raw, _ := json.Marshal(map[string]string{"refund_id": refundId, "order_id": req.OrderId})
	return &RefundResult{GatewayRefundId: refundId, RawResponse: raw}, nil
}
