package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math"

	"crowdfund-be/internal/pkg/apperror"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

type midtransClient struct {
	cfg  MidtransConfig
	snap snap.Client
	core coreapi.Client
}

// NewMidtransClient builds a Client backed by Midtrans. Charges go through
// Snap so the payer gets a hosted payment page; refunds go through the
// Core API against the settled transaction.
func NewMidtransClient(cfg MidtransConfig) Client {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	c := &midtransClient{cfg: cfg}
	c.snap.New(cfg.ServerKey, env)
	c.core.New(cfg.ServerKey, env)
	return c
}

// grossAmount converts an amount to the whole currency units the
// provider's API takes. Rounds to the nearest unit so fractional
// amounts never silently truncate.
func grossAmount(amount float64) int64 {
	return int64(math.Round(amount))
}

func (c *midtransClient) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderId,
			GrossAmt: grossAmount(req.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.PhoneNumber,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.AccountReference,
				Price: grossAmount(req.Amount),
				Qty:   1,
				Name:  req.Description,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, midErr := c.snap.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, decodeMidtransError("initiate payment", midErr)
	}

	raw, _ := json.Marshal(resp)
	return &PaymentInitiation{
		GatewayTransactionId: resp.Token,
		RedirectUrl:          resp.RedirectURL,
		RawResponse:          raw,
	}, nil
}

func (c *midtransClient) InitiateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	refundReq := &coreapi.RefundReq{
		RefundKey: req.OrderId,
		Amount:    grossAmount(req.Amount),
		Reason:    req.Reason,
	}

	resp, midErr := c.core.RefundTransaction(req.GatewayTransactionId, refundReq)
	if midErr != nil {
		return nil, decodeMidtransError("initiate refund", midErr)
	}

	raw, _ := json.Marshal(resp)
	return &RefundResult{
		GatewayRefundId: resp.RefundKey,
		RawResponse:     raw,
	}, nil
}

// decodeMidtransError classifies provider failures once. Provider-side
// faults and transport errors are retryable; rejections of the request
// itself are terminal.
func decodeMidtransError(op string, midErr *midtrans.Error) error {
	retryable := midErr.StatusCode == 0 || midErr.StatusCode >= 500
	return apperror.Gateway(fmt.Sprintf("%s: %s", op, midErr.GetMessage()), retryable, midErr)
}

// VerifySignature checks a webhook notification's signature_key, computed
// by the provider as SHA512(order_id + status_code + gross_amount + server key).
func VerifySignature(serverKey, orderId, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	expected := fmt.Sprintf("%x", sum)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
