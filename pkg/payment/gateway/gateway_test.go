package gateway

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"testing"

	"crowdfund-be/internal/pkg/apperror"

	"github.com/midtrans/midtrans-go"
)

func TestVerifySignature(t *testing.T) {
	serverKey := "SB-Mid-server-testkey"
	orderId := "order-42"
	statusCode := "200"
	grossAmount := "250000.00"

	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	valid := fmt.Sprintf("%x", sum)

	if !VerifySignature(serverKey, orderId, statusCode, grossAmount, valid) {
		t.Error("valid signature rejected")
	}
	if VerifySignature(serverKey, orderId, statusCode, grossAmount, "deadbeef") {
		t.Error("forged signature accepted")
	}
	if VerifySignature(serverKey, orderId, "201", grossAmount, valid) {
		t.Error("signature accepted for different status code")
	}
}

func TestDecodeMidtransErrorClassification(t *testing.T) {
	cases := []struct {
		name          string
		statusCode    int
		wantRetryable bool
	}{
		{"provider fault", 500, true},
		{"gateway timeout", 504, true},
		{"transport failure", 0, true},
		{"rejected request", 400, false},
		{"unauthorized", 401, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeMidtransError("initiate payment", &midtrans.Error{
				StatusCode: tc.statusCode,
				Message:    "provider says no",
			})

			var appErr *apperror.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("decoded error %T is not an apperror", err)
			}
			if appErr.Kind != apperror.KindGateway {
				t.Errorf("kind = %s, want GATEWAY_ERROR", appErr.Kind)
			}
			if apperror.IsRetryable(err) != tc.wantRetryable {
				t.Errorf("retryable = %v, want %v", apperror.IsRetryable(err), tc.wantRetryable)
			}
		})
	}
}

func TestGrossAmountRoundsToNearestUnit(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{250000, 250000},
		{50.75, 51},
		{50.25, 50},
		{99.5, 100},
	}
	for _, tc := range cases {
		if got := grossAmount(tc.amount); got != tc.want {
			t.Errorf("grossAmount(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestMemoryClientScriptedFailures(t *testing.T) {
	client := NewMemoryClient()
	boom := apperror.Gateway("connection reset", true, nil)
	client.FailPaymentWith("order-1", boom, boom)

	ctx := context.Background()
	req := PaymentRequest{OrderId: "order-1", Amount: 50000, PhoneNumber: "+628123456789"}

	for i := 0; i < 2; i++ {
		if _, err := client.InitiatePayment(ctx, req); err == nil {
			t.Fatalf("attempt %d succeeded, want scripted failure", i+1)
		}
	}

	initiation, err := client.InitiatePayment(ctx, req)
	if err != nil {
		t.Fatalf("attempt 3 returned %v, want success after drain", err)
	}
	if initiation.GatewayTransactionId == "" {
		t.Error("initiation has empty gateway transaction id")
	}
	if len(client.Payments) != 3 {
		t.Errorf("recorded %d payment requests, want 3", len(client.Payments))
	}
}
