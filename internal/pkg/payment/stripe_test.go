package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
)

func newTestClient(srv *httptest.Server) *StripeClient {
	return &StripeClient{
		SecretKey:  "sk_test_123",
		APIBaseURL: srv.URL,
		Currency:   "usd",
		HTTPClient: srv.Client(),
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "5900", r.PostFormValue("amount"))
		assert.Equal(t, "usd", r.PostFormValue("currency"))
		assert.Equal(t, "true", r.PostFormValue("automatic_payment_methods[enabled]"))
		assert.Equal(t, "7", r.PostFormValue("metadata[user_id]"))
		assert.Equal(t, "2", r.PostFormValue("metadata[membership_plan_id]"))
		assert.Equal(t, "Premium Membership", r.PostFormValue("metadata[membership_plan_name]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "pi_123",
			"client_secret": "pi_123_secret_abc",
			"status": "requires_payment_method",
			"amount": 5900,
			"currency": "usd"
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	intent, err := client.CreatePaymentIntent(context.Background(), decimal.RequireFromString("59.00"), IntentMetadata{
		UserID:   7,
		PlanID:   2,
		PlanName: "Premium Membership",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(5900), intent.Amount)
}

func TestCreatePaymentIntentRejectsNonPositiveAmount(t *testing.T) {
	client := &StripeClient{SecretKey: "sk_test_123", Currency: "usd", HTTPClient: http.DefaultClient}

	_, err := client.CreatePaymentIntent(context.Background(), decimal.Zero, IntentMetadata{UserID: 1})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPayment))
}

func TestCreatePaymentIntentRequiresClientSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "pi_123", "status": "requires_payment_method"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.CreatePaymentIntent(context.Background(), decimal.RequireFromString("29.00"), IntentMetadata{UserID: 1})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPayment))
}

func TestProviderErrorIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"message": "Your card was declined.", "type": "card_error", "code": "card_declined"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	_, err := client.CreatePaymentIntent(context.Background(), decimal.RequireFromString("29.00"), IntentMetadata{UserID: 1})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPayment))
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestRetrievePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "pi_123",
			"status": "succeeded",
			"amount": 5900,
			"currency": "usd",
			"metadata": {"user_id": "7", "membership_plan_id": "2", "membership_plan_name": "Premium Membership"}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	intent, err := client.RetrievePaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, intent.Status)

	owner, ok := intent.OwnerID()
	require.True(t, ok)
	assert.Equal(t, uint(7), owner)

	planID, ok := intent.PlanID()
	require.True(t, ok)
	assert.Equal(t, uint(2), planID)

	assert.True(t, intent.AmountDecimal().Equal(decimal.RequireFromString("59.00")))
}

func TestRetrievePaymentIntentRequiresID(t *testing.T) {
	client := &StripeClient{SecretKey: "sk_test_123", HTTPClient: http.DefaultClient}

	_, err := client.RetrievePaymentIntent(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
}

func TestCreateRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/refunds", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostFormValue("payment_intent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "re_1", "payment_intent": "pi_123", "status": "succeeded", "amount": 5900}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	refund, err := client.CreateRefund(context.Background(), "pi_123")
	require.NoError(t, err)

	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, "pi_123", refund.PaymentIntent)
}

func TestOwnerIDWithoutMetadata(t *testing.T) {
	intent := &Intent{ID: "pi_foreign"}
	_, ok := intent.OwnerID()
	assert.False(t, ok)

	intent.Metadata = map[string]string{"user_id": "not-a-number"}
	_, ok = intent.OwnerID()
	assert.False(t, ok)
}

func TestToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "29.00", want: 2900},
		{in: "0.10", want: 10},
		{in: "99.999", want: 10000},
		{in: "0", want: 0},
	}

	for _, tt := range tests {
		if got := toCents(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("toCents(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
