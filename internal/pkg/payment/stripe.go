package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com"

// StatusSucceeded is the only provider status that allows order completion.
const StatusSucceeded = "succeeded"

// Metadata keys attached to every payment intent so a later verification can
// be tied back to the purchasing user and plan.
const (
	metaUserID   = "user_id"
	metaPlanID   = "membership_plan_id"
	metaPlanName = "membership_plan_name"
)

// StripeClient talks to the Stripe payment intents API. The service never
// touches card data; it only holds intent ids and statuses.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string
	Currency   string

	HTTPClient *http.Client
}

// Intent mirrors the provider-side payment intent fields this service uses.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// Refund mirrors the provider-side refund record.
type Refund struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
}

// IntentMetadata links an intent back to the purchasing user and plan.
type IntentMetadata struct {
	UserID   uint
	PlanID   uint
	PlanName string
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		Currency:   strings.ToLower(env.GetEnv("STRIPE_CURRENCY", "usd")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreatePaymentIntent authorizes a charge for the given amount. The amount
// is the server-computed order total; client-supplied amounts never reach
// this method.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, meta IntentMetadata) (*Intent, error) {
	cents := toCents(amount)
	if cents <= 0 {
		return nil, apperr.Paymentf("payment amount must be positive, got %s", amount)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(cents, 10))
	form.Set("currency", c.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("description", fmt.Sprintf("%s membership", meta.PlanName))
	form.Set("metadata["+metaUserID+"]", strconv.FormatUint(uint64(meta.UserID), 10))
	form.Set("metadata["+metaPlanID+"]", strconv.FormatUint(uint64(meta.PlanID), 10))
	form.Set("metadata["+metaPlanName+"]", meta.PlanName)

	var intent Intent
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	if strings.TrimSpace(intent.ClientSecret) == "" {
		return nil, apperr.Paymentf("provider returned an intent without a client secret")
	}
	return &intent, nil
}

// RetrievePaymentIntent fetches the current provider-side state of an intent.
func (c *StripeClient) RetrievePaymentIntent(ctx context.Context, intentID string) (*Intent, error) {
	id := strings.TrimSpace(intentID)
	if id == "" {
		return nil, apperr.Invalidf("payment intent id is required")
	}

	var intent Intent
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// CreateRefund refunds the full charge behind an intent. Intents that are
// not refundable (wrong state, already refunded) surface as payment errors.
func (c *StripeClient) CreateRefund(ctx context.Context, intentID string) (*Refund, error) {
	id := strings.TrimSpace(intentID)
	if id == "" {
		return nil, apperr.Invalidf("payment intent id is required")
	}

	form := url.Values{}
	form.Set("payment_intent", id)

	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("STRIPE_SECRET_KEY is not configured")
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.APIBaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindPayment, err, "payment provider unreachable")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.Paymentf("provider rejected request: %s", providerErrorMessage(resp.StatusCode, raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Wrap(apperr.KindPayment, err, "invalid provider response")
	}
	return nil
}

func providerErrorMessage(status int, raw []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return fmt.Sprintf("status=%d body=%s", status, string(raw))
}

// OwnerID extracts the purchasing user from intent metadata. The second
// return is false for intents this service did not create.
func (i *Intent) OwnerID() (uint, bool) {
	raw, ok := i.Metadata[metaUserID]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// PlanID extracts the purchased plan from intent metadata.
func (i *Intent) PlanID() (uint, bool) {
	raw, ok := i.Metadata[metaPlanID]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// AmountDecimal converts the provider's cent amount back to a money value.
func (i *Intent) AmountDecimal() decimal.Decimal {
	return decimal.New(i.Amount, -2)
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
